package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionID identifies one of the eight fixed analysis questions.
type QuestionID int

const (
	Demographics QuestionID = iota + 1
	CategorySizeSpending
	GenderBehavior
	PopularItems
	SeasonalSpending
	RatingSpending
	GeographicSpending
	AgeCategory
)

// Questions lists all questions in report order.
var Questions = []QuestionID{
	Demographics, CategorySizeSpending, GenderBehavior, PopularItems,
	SeasonalSpending, RatingSpending, GeographicSpending, AgeCategory,
}

var questionTitles = map[QuestionID]string{
	Demographics:         "Gender and age distribution, purchase frequency by age",
	CategorySizeSpending: "Spending by product category and size",
	GenderBehavior:       "Purchasing behavior by gender",
	PopularItems:         "Most purchased items and preferred shipping by category",
	SeasonalSpending:     "Seasonal spending",
	RatingSpending:       "Review rating and spending",
	GeographicSpending:   "Top locations by average purchase amount",
	AgeCategory:          "Age group and product category",
}

// String returns the stable identifier, e.g. "question7".
func (q QuestionID) String() string { return "question" + strconv.Itoa(int(q)) }

// Title is a human-readable description of the question.
func (q QuestionID) Title() string {
	if t, ok := questionTitles[q]; ok {
		return t
	}
	return q.String()
}

func (q QuestionID) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *QuestionID) UnmarshalText(b []byte) error {
	n, err := strconv.Atoi(strings.TrimPrefix(string(b), "question"))
	if err != nil || n < int(Demographics) || n > int(AgeCategory) {
		return fmt.Errorf("unknown question %q", string(b))
	}
	*q = QuestionID(n)
	return nil
}

// Point is one category value and its statistic.
type Point struct {
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// Series maps category values to numbers, in a deterministic order.
type Series struct {
	Name   string  `json:"name" yaml:"name"`
	Title  string  `json:"title" yaml:"title"`
	Points []Point `json:"points" yaml:"points"`
}

// Get looks up the value for key.
func (s Series) Get(key string) (float64, bool) {
	for _, p := range s.Points {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

// Keys returns the keys in series order.
func (s Series) Keys() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Key
	}
	return out
}

// Map returns the series as an unordered map.
func (s Series) Map() map[string]float64 {
	out := make(map[string]float64, len(s.Points))
	for _, p := range s.Points {
		out[p.Key] = p.Value
	}
	return out
}

// Matrix is a two-dimensional relationship: Values[i][j] belongs to Rows[i], Cols[j].
type Matrix struct {
	Name   string      `json:"name" yaml:"name"`
	Title  string      `json:"title" yaml:"title"`
	Rows   []string    `json:"rows" yaml:"rows"`
	Cols   []string    `json:"cols" yaml:"cols"`
	Values [][]float64 `json:"values" yaml:"values"`
}

// Get returns the cell for (row, col).
func (m Matrix) Get(row, col string) (float64, bool) {
	i := indexOf(m.Rows, row)
	j := indexOf(m.Cols, col)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Row returns one row as a column-keyed map.
func (m Matrix) Row(row string) map[string]float64 {
	i := indexOf(m.Rows, row)
	if i < 0 {
		return nil
	}
	out := make(map[string]float64, len(m.Cols))
	for j, c := range m.Cols {
		out[c] = m.Values[i][j]
	}
	return out
}

// Label pairs a category value with a categorical statistic such as a mode.
type Label struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Labels maps category values to category values.
type Labels struct {
	Name    string  `json:"name" yaml:"name"`
	Title   string  `json:"title" yaml:"title"`
	Entries []Label `json:"entries" yaml:"entries"`
}

// Get looks up the label for key.
func (l Labels) Get(key string) (string, bool) {
	for _, e := range l.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Bundle is the result of one question: a set of named metrics.
type Bundle struct {
	Question QuestionID `json:"question" yaml:"question"`
	Title    string     `json:"title" yaml:"title"`
	Series   []Series   `json:"series,omitempty" yaml:"series,omitempty"`
	Matrices []Matrix   `json:"matrices,omitempty" yaml:"matrices,omitempty"`
	Labels   []Labels   `json:"labels,omitempty" yaml:"labels,omitempty"`
}

func newBundle(q QuestionID) *Bundle {
	return &Bundle{Question: q, Title: q.Title()}
}

// SeriesNamed returns the series metric with the given name.
func (b *Bundle) SeriesNamed(name string) (Series, bool) {
	for _, s := range b.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// MatrixNamed returns the matrix metric with the given name.
func (b *Bundle) MatrixNamed(name string) (Matrix, bool) {
	for _, m := range b.Matrices {
		if m.Name == name {
			return m, true
		}
	}
	return Matrix{}, false
}

// LabelsNamed returns the labels metric with the given name.
func (b *Bundle) LabelsNamed(name string) (Labels, bool) {
	for _, l := range b.Labels {
		if l.Name == name {
			return l, true
		}
	}
	return Labels{}, false
}

// MetricCount is the number of metrics in the bundle.
func (b *Bundle) MetricCount() int {
	return len(b.Series) + len(b.Matrices) + len(b.Labels)
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
