package analysis

import (
	"fmt"

	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
)

// Options controls analysis behavior.
type Options struct {
	// TopN bounds the geographic ranking.
	TopN int
	// Workers bounds how many questions RunAll computes concurrently.
	Workers int
}

// DefaultOptions returns the settings used by the original report.
func DefaultOptions() Options {
	return Options{TopN: 10, Workers: 4}
}

// Analyzer answers the eight questions over a read-only table. Methods share
// no mutable state and may be called concurrently.
type Analyzer struct {
	t   *dataset.Table
	opt Options
}

// NewAnalyzer wraps t. Zero option fields fall back to DefaultOptions.
func NewAnalyzer(t *dataset.Table, opt Options) *Analyzer {
	def := DefaultOptions()
	if opt.TopN <= 0 {
		opt.TopN = def.TopN
	}
	if opt.Workers <= 0 {
		opt.Workers = def.Workers
	}
	return &Analyzer{t: t, opt: opt}
}

// Run dispatches to the method for q.
func (a *Analyzer) Run(q QuestionID) (*Bundle, error) {
	switch q {
	case Demographics:
		return a.Demographics()
	case CategorySizeSpending:
		return a.CategorySizeSpending()
	case GenderBehavior:
		return a.GenderBehavior()
	case PopularItems:
		return a.PopularItems()
	case SeasonalSpending:
		return a.SeasonalSpending()
	case RatingSpending:
		return a.RatingSpending()
	case GeographicSpending:
		return a.GeographicSpending()
	case AgeCategory:
		return a.AgeCategory()
	default:
		return nil, fmt.Errorf("unknown question %d", int(q))
	}
}

// check rejects empty tables and tables missing any required column.
func (a *Analyzer) check(q QuestionID, cols ...dataset.Column) error {
	if a.t == nil || a.t.Len() == 0 {
		return &EmptyTableError{Question: q}
	}
	for _, c := range cols {
		if !a.t.Has(c) {
			return &AggregationError{Question: q, Column: string(c), Reason: "column not in dataset"}
		}
	}
	return nil
}

func noValues(q QuestionID, c dataset.Column) error {
	return &AggregationError{Question: q, Column: string(c), Reason: "no usable values"}
}

// Demographics: gender and age distributions plus purchase frequency within each age group.
func (a *Analyzer) Demographics() (*Bundle, error) {
	q := Demographics
	if err := a.check(q, dataset.ColGender, dataset.ColAgeGroup, dataset.ColPurchaseFrequency); err != nil {
		return nil, err
	}
	b := newBundle(q)

	genders, total := countBy(a.t, dataset.ColGender)
	if total == 0 {
		return nil, noValues(q, dataset.ColGender)
	}
	b.Series = append(b.Series, seriesByCount("gender_distribution", "Gender distribution", genders, total))

	ages, total := countBy(a.t, dataset.ColAgeGroup)
	props := make(map[string]float64, len(ages))
	for k, n := range ages {
		props[k] = float64(n) / float64(total)
	}
	b.Series = append(b.Series, seriesFromMap("age_distribution", "Age distribution", dataset.ColAgeGroup, props))

	rows, cols, vals := crosstab(a.t, dataset.ColAgeGroup, dataset.ColPurchaseFrequency)
	if len(cols) == 0 {
		return nil, noValues(q, dataset.ColPurchaseFrequency)
	}
	b.Matrices = append(b.Matrices, Matrix{
		Name: "age_frequency", Title: "Purchase frequency within each age group",
		Rows: rows, Cols: cols, Values: vals,
	})
	return b, nil
}

// CategorySizeSpending: mean purchase amount per category and per size.
func (a *Analyzer) CategorySizeSpending() (*Bundle, error) {
	q := CategorySizeSpending
	if err := a.check(q, dataset.ColCategory, dataset.ColSize, dataset.ColPurchaseAmount); err != nil {
		return nil, err
	}
	b := newBundle(q)
	byCat := meanBy(a.t, dataset.ColCategory, purchaseAmount)
	if len(byCat) == 0 {
		return nil, noValues(q, dataset.ColCategory)
	}
	bySize := meanBy(a.t, dataset.ColSize, purchaseAmount)
	if len(bySize) == 0 {
		return nil, noValues(q, dataset.ColSize)
	}
	b.Series = append(b.Series,
		seriesFromMap("category_avg_amount", "Average purchase amount by category", dataset.ColCategory, byCat),
		seriesFromMap("size_avg_amount", "Average purchase amount by size", dataset.ColSize, bySize),
	)
	return b, nil
}

// GenderBehavior: purchase count and mean purchase amount per gender.
func (a *Analyzer) GenderBehavior() (*Bundle, error) {
	q := GenderBehavior
	if err := a.check(q, dataset.ColGender, dataset.ColPurchaseAmount); err != nil {
		return nil, err
	}
	b := newBundle(q)
	counts, total := countBy(a.t, dataset.ColGender)
	if total == 0 {
		return nil, noValues(q, dataset.ColGender)
	}
	means := meanBy(a.t, dataset.ColGender, purchaseAmount)
	if len(means) == 0 {
		return nil, noValues(q, dataset.ColPurchaseAmount)
	}
	b.Series = append(b.Series,
		seriesByCount("gender_purchase_count", "Purchases by gender", counts, 0),
		seriesFromMap("gender_avg_amount", "Average purchase amount by gender", dataset.ColGender, means),
	)
	return b, nil
}

// PopularItems: the mode of item and of shipping type within each category.
func (a *Analyzer) PopularItems() (*Bundle, error) {
	q := PopularItems
	if err := a.check(q, dataset.ColCategory, dataset.ColItem, dataset.ColShippingType); err != nil {
		return nil, err
	}
	b := newBundle(q)
	items := modeBy(a.t, dataset.ColCategory, dataset.ColItem)
	if len(items) == 0 {
		return nil, noValues(q, dataset.ColItem)
	}
	shipping := modeBy(a.t, dataset.ColCategory, dataset.ColShippingType)
	if len(shipping) == 0 {
		return nil, noValues(q, dataset.ColShippingType)
	}
	b.Labels = append(b.Labels,
		labelsFromMap("category_top_item", "Most purchased item by category", items),
		labelsFromMap("category_top_shipping", "Preferred shipping type by category", shipping),
	)
	return b, nil
}

// SeasonalSpending: mean purchase amount per season.
func (a *Analyzer) SeasonalSpending() (*Bundle, error) {
	q := SeasonalSpending
	if err := a.check(q, dataset.ColSeason, dataset.ColPurchaseAmount); err != nil {
		return nil, err
	}
	m := meanBy(a.t, dataset.ColSeason, purchaseAmount)
	if len(m) == 0 {
		return nil, noValues(q, dataset.ColSeason)
	}
	b := newBundle(q)
	b.Series = append(b.Series, seriesFromMap("season_avg_amount", "Average purchase amount by season", dataset.ColSeason, m))
	return b, nil
}

// RatingSpending: mean rating per category and mean purchase amount per rating value.
func (a *Analyzer) RatingSpending() (*Bundle, error) {
	q := RatingSpending
	if err := a.check(q, dataset.ColCategory, dataset.ColReviewRating, dataset.ColPurchaseAmount); err != nil {
		return nil, err
	}
	byCat := meanBy(a.t, dataset.ColCategory, reviewRating)
	if len(byCat) == 0 {
		return nil, noValues(q, dataset.ColReviewRating)
	}
	byRating := meanByRating(a.t)
	if len(byRating.Points) == 0 {
		return nil, noValues(q, dataset.ColPurchaseAmount)
	}
	b := newBundle(q)
	b.Series = append(b.Series,
		seriesFromMap("category_avg_rating", "Average review rating by category", dataset.ColCategory, byCat),
		byRating,
	)
	return b, nil
}

// GeographicSpending: the TopN locations by mean purchase amount.
func (a *Analyzer) GeographicSpending() (*Bundle, error) {
	q := GeographicSpending
	if err := a.check(q, dataset.ColLocation, dataset.ColPurchaseAmount); err != nil {
		return nil, err
	}
	m := meanBy(a.t, dataset.ColLocation, purchaseAmount)
	if len(m) == 0 {
		return nil, noValues(q, dataset.ColLocation)
	}
	b := newBundle(q)
	title := fmt.Sprintf("Top %d locations by average purchase amount", a.opt.TopN)
	b.Series = append(b.Series, topN("location_avg_amount", title, m, a.opt.TopN))
	return b, nil
}

// AgeCategory: row-normalized cross tabulation of age group against category.
func (a *Analyzer) AgeCategory() (*Bundle, error) {
	q := AgeCategory
	if err := a.check(q, dataset.ColAgeGroup, dataset.ColCategory); err != nil {
		return nil, err
	}
	rows, cols, vals := crosstab(a.t, dataset.ColAgeGroup, dataset.ColCategory)
	if len(cols) == 0 {
		return nil, noValues(q, dataset.ColCategory)
	}
	b := newBundle(q)
	b.Matrices = append(b.Matrices, Matrix{
		Name: "age_category", Title: "Category share within each age group",
		Rows: rows, Cols: cols, Values: vals,
	})
	return b, nil
}

func labelsFromMap(name, title string, m map[string]string) Labels {
	l := Labels{Name: name, Title: title, Entries: make([]Label, 0, len(m))}
	for _, k := range orderKeys(dataset.ColCategory, keysOf(m)) {
		l.Entries = append(l.Entries, Label{Key: k, Value: m[k]})
	}
	return l
}
