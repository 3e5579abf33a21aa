package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
)

// Grouping is done in two passes: rows feed per-key accumulators, then the
// accumulators are finalized into a statistic. Rows whose key is missing ("")
// are excluded from the group and from proportion denominators.

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(x float64) {
	m.sum += x
	m.n++
}

func (m *meanAcc) mean() float64 { return m.sum / float64(m.n) }

type valueFunc func(r dataset.Row) (float64, bool)

func purchaseAmount(r dataset.Row) (float64, bool) { return r.PurchaseAmount, r.HasPurchaseAmount }

func reviewRating(r dataset.Row) (float64, bool) { return r.ReviewRating, r.HasReviewRating }

// countBy counts rows per non-missing key.
func countBy(t *dataset.Table, key dataset.Column) (map[string]int, int) {
	counts := make(map[string]int)
	total := 0
	for i := 0; i < t.Len(); i++ {
		k := t.Row(i).Value(key)
		if k == "" {
			continue
		}
		counts[k]++
		total++
	}
	return counts, total
}

// meanBy averages value per key. Rows lacking the value are skipped, so a
// key whose rows all lack it does not appear.
func meanBy(t *dataset.Table, key dataset.Column, value valueFunc) map[string]float64 {
	accs := make(map[string]*meanAcc)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		k := r.Value(key)
		x, ok := value(r)
		if k == "" || !ok {
			continue
		}
		a := accs[k]
		if a == nil {
			a = &meanAcc{}
			accs[k] = a
		}
		a.add(x)
	}
	out := make(map[string]float64, len(accs))
	for k, a := range accs {
		out[k] = a.mean()
	}
	return out
}

// modeBy finds the most frequent value of col within each group. Ties go to
// the lexicographically smallest value.
func modeBy(t *dataset.Table, group, col dataset.Column) map[string]string {
	freq := make(map[string]map[string]int)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		g, v := r.Value(group), r.Value(col)
		if g == "" || v == "" {
			continue
		}
		m := freq[g]
		if m == nil {
			m = make(map[string]int)
			freq[g] = m
		}
		m[v]++
	}
	out := make(map[string]string, len(freq))
	for g, m := range freq {
		best, bestN := "", 0
		for v, n := range m {
			if n > bestN || (n == bestN && v < best) {
				best, bestN = v, n
			}
		}
		out[g] = best
	}
	return out
}

// crosstab counts (row, col) pairs and normalizes each row to proportions.
// Every row/col combination is present; unobserved cells are zero.
func crosstab(t *dataset.Table, rowKey, colKey dataset.Column) (rows, cols []string, values [][]float64) {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	colSet := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		rk, ck := r.Value(rowKey), r.Value(colKey)
		if rk == "" || ck == "" {
			continue
		}
		m := counts[rk]
		if m == nil {
			m = make(map[string]int)
			counts[rk] = m
		}
		m[ck]++
		totals[rk]++
		colSet[ck] = struct{}{}
	}
	rows = orderKeys(rowKey, keysOf(totals))
	cols = make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	values = make([][]float64, len(rows))
	for i, rk := range rows {
		values[i] = make([]float64, len(cols))
		total := float64(totals[rk])
		for j, ck := range cols {
			values[i][j] = float64(counts[rk][ck]) / total
		}
	}
	return rows, cols, values
}

// orderKeys sorts keys in the column's natural order: age buckets by bound,
// everything else lexicographically.
func orderKeys(col dataset.Column, keys []string) []string {
	if col == dataset.ColAgeGroup {
		sort.Slice(keys, func(i, j int) bool {
			gi, _ := dataset.ParseAgeGroup(keys[i])
			gj, _ := dataset.ParseAgeGroup(keys[j])
			return gi < gj
		})
		return keys
	}
	sort.Strings(keys)
	return keys
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// seriesFromMap emits points in the column's natural key order.
func seriesFromMap(name, title string, col dataset.Column, m map[string]float64) Series {
	s := Series{Name: name, Title: title, Points: make([]Point, 0, len(m))}
	for _, k := range orderKeys(col, keysOf(m)) {
		s.Points = append(s.Points, Point{Key: k, Value: m[k]})
	}
	return s
}

// seriesByCount emits counts (or proportions of total when total > 0)
// ordered by count descending, then key ascending.
func seriesByCount(name, title string, counts map[string]int, total int) Series {
	keys := keysOf(counts)
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] == counts[keys[j]] {
			return keys[i] < keys[j]
		}
		return counts[keys[i]] > counts[keys[j]]
	})
	s := Series{Name: name, Title: title, Points: make([]Point, 0, len(keys))}
	for _, k := range keys {
		v := float64(counts[k])
		if total > 0 {
			v /= float64(total)
		}
		s.Points = append(s.Points, Point{Key: k, Value: v})
	}
	return s
}

// topN keeps the n largest values, descending, ties by key ascending.
func topN(name, title string, m map[string]float64, n int) Series {
	keys := keysOf(m)
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] == m[keys[j]] {
			return keys[i] < keys[j]
		}
		return m[keys[i]] > m[keys[j]]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	s := Series{Name: name, Title: title, Points: make([]Point, 0, len(keys))}
	for _, k := range keys {
		s.Points = append(s.Points, Point{Key: k, Value: m[k]})
	}
	return s
}

// meanByRating groups on the numeric rating value and orders keys numerically.
func meanByRating(t *dataset.Table) Series {
	accs := make(map[float64]*meanAcc)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if !r.HasReviewRating || !r.HasPurchaseAmount {
			continue
		}
		a := accs[r.ReviewRating]
		if a == nil {
			a = &meanAcc{}
			accs[r.ReviewRating] = a
		}
		a.add(r.PurchaseAmount)
	}
	ratings := make([]float64, 0, len(accs))
	for k := range accs {
		ratings = append(ratings, k)
	}
	sort.Float64s(ratings)
	s := Series{Name: "rating_avg_amount", Title: "Average purchase amount by review rating", Points: make([]Point, 0, len(ratings))}
	for _, v := range ratings {
		s.Points = append(s.Points, Point{Key: formatRating(v), Value: accs[v].mean()})
	}
	return s
}

// formatRating renders 3 as "3.0" and 3.25 as "3.25".
func formatRating(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
