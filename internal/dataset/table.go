package dataset

import (
	"fmt"
	"math"
	"sort"
)

// Column is a logical column of the purchase dataset, independent of the
// header text used by a particular file.
type Column string

const (
	ColGender            Column = "gender"
	ColAge               Column = "age"
	ColAgeGroup          Column = "age_group"
	ColCategory          Column = "category"
	ColItem              Column = "item"
	ColSize              Column = "size"
	ColPurchaseAmount    Column = "purchase_amount"
	ColReviewRating      Column = "review_rating"
	ColSeason            Column = "season"
	ColShippingType      Column = "shipping_type"
	ColLocation          Column = "location"
	ColPurchaseFrequency Column = "purchase_frequency"
)

// SourceColumns lists the columns read from input files, in header-resolution order.
// ColAgeGroup is derived and never read.
var SourceColumns = []Column{
	ColGender, ColAge, ColCategory, ColItem, ColSize, ColPurchaseAmount,
	ColReviewRating, ColSeason, ColShippingType, ColLocation, ColPurchaseFrequency,
}

// AgeGroup is a fixed half-open age interval.
type AgeGroup int

const (
	AgeUnder20 AgeGroup = iota
	Age20To29
	Age30To39
	Age40To49
	Age50To59
	Age60Plus
)

// AgeGroups lists every bucket in natural order.
var AgeGroups = []AgeGroup{AgeUnder20, Age20To29, Age30To39, Age40To49, Age50To59, Age60Plus}

var ageLabels = [...]string{"<20", "20-29", "30-39", "40-49", "50-59", "60+"}

func (g AgeGroup) String() string {
	if g < AgeUnder20 || g > Age60Plus {
		return fmt.Sprintf("AgeGroup(%d)", int(g))
	}
	return ageLabels[g]
}

// ParseAgeGroup maps a label such as "30-39" back to its bucket.
func ParseAgeGroup(label string) (AgeGroup, bool) {
	for i, l := range ageLabels {
		if l == label {
			return AgeGroup(i), true
		}
	}
	return 0, false
}

// BucketAge maps an age onto [0,20) [20,30) [30,40) [40,50) [50,60) [60,inf).
// Boundary values belong to the upper bucket.
func BucketAge(age float64) (AgeGroup, error) {
	if math.IsNaN(age) || math.IsInf(age, 0) || age < 0 {
		return 0, fmt.Errorf("age %v is not a finite non-negative number", age)
	}
	switch {
	case age < 20:
		return AgeUnder20, nil
	case age < 30:
		return Age20To29, nil
	case age < 40:
		return Age30To39, nil
	case age < 50:
		return Age40To49, nil
	case age < 60:
		return Age50To59, nil
	default:
		return Age60Plus, nil
	}
}

// Row is one purchase record. Empty categorical fields mean "missing".
// Numeric fields are only meaningful when their Has flag is set.
type Row struct {
	Gender            string
	Age               float64
	AgeGroup          AgeGroup
	Category          string
	Item              string
	Size              string
	PurchaseAmount    float64
	HasPurchaseAmount bool
	ReviewRating      float64
	HasReviewRating   bool
	Season            string
	ShippingType      string
	Location          string
	PurchaseFrequency string
}

// Value returns the categorical value of c for this row. Numeric columns
// are not categorical and yield "".
func (r Row) Value(c Column) string {
	switch c {
	case ColGender:
		return r.Gender
	case ColAgeGroup:
		return r.AgeGroup.String()
	case ColCategory:
		return r.Category
	case ColItem:
		return r.Item
	case ColSize:
		return r.Size
	case ColSeason:
		return r.Season
	case ColShippingType:
		return r.ShippingType
	case ColLocation:
		return r.Location
	case ColPurchaseFrequency:
		return r.PurchaseFrequency
	default:
		return ""
	}
}

// Table is an immutable, ordered snapshot of rows. Build it with NewTable;
// the age bucket of every row is derived there and nowhere else.
type Table struct {
	name     string
	rows     []Row
	columns  map[Column]bool
	warnings []string
}

// NewTable copies rows, derives AgeGroup from Age for each of them and records
// which logical columns the source provided. The age column is always required.
func NewTable(name string, rows []Row, present []Column) (*Table, error) {
	cols := make(map[Column]bool, len(present)+1)
	for _, c := range present {
		cols[c] = true
	}
	if !cols[ColAge] {
		return nil, &SchemaError{Column: string(ColAge), Reason: "column not found"}
	}
	cols[ColAgeGroup] = true

	out := make([]Row, len(rows))
	for i, r := range rows {
		g, err := BucketAge(r.Age)
		if err != nil {
			return nil, &SchemaError{Column: string(ColAge), Row: i + 1, Value: fmt.Sprint(r.Age), Reason: err.Error()}
		}
		r.AgeGroup = g
		out[i] = r
	}
	return &Table{name: name, rows: out, columns: cols}, nil
}

// Name is the base name of the source file.
func (t *Table) Name() string { return t.name }

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Has reports whether the source provided column c.
func (t *Table) Has(c Column) bool { return t.columns[c] }

// Columns lists the available logical columns in sorted order.
func (t *Table) Columns() []Column {
	out := make([]Column, 0, len(t.columns))
	for c := range t.columns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Warnings are non-fatal notes collected while loading.
func (t *Table) Warnings() []string {
	return append([]string(nil), t.warnings...)
}
