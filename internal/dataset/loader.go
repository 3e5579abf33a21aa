package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for CSV. If 0, it is chosen from the file name.
	Delimiter rune
	// SheetName selects the XLSX sheet; empty means the first sheet.
	SheetName string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Headers maps logical columns to header text. Missing entries fall back to DefaultHeaders.
	Headers map[Column]string
}

// DefaultHeaders mirrors the public shopping trends dataset.
func DefaultHeaders() map[Column]string {
	return map[Column]string{
		ColGender:            "Gender",
		ColAge:               "Age",
		ColCategory:          "Category",
		ColItem:              "Item Purchased",
		ColSize:              "Size",
		ColPurchaseAmount:    "Purchase Amount (USD)",
		ColReviewRating:      "Review Rating",
		ColSeason:            "Season",
		ColShippingType:      "Shipping Type",
		ColLocation:          "Location",
		ColPurchaseFrequency: "Frequency of Purchases",
	}
}

// DefaultOptions returns options for the standard dataset layout.
func DefaultOptions() Options {
	return Options{Headers: DefaultHeaders()}
}

// reader loads one file format.
type reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []reader

func register(r reader) {
	registry = append(registry, r)
}

func init() {
	register(xlsxReader{})
	// csv last: it accepts anything not claimed by another reader
	register(csvReader{})
}

// Load reads the dataset at path, choosing a reader by extension, and returns
// the enriched table.
func Load(path string, opt Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DataNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("no reader for %s", filepath.Base(path))
}

// recordSource yields raw records; ok=false signals the end of input.
type recordSource func() (rec []string, ok bool, err error)

// buildTable resolves header positions and converts raw records into rows.
func buildTable(name string, header []string, next recordSource, opt Options) (*Table, error) {
	idx := resolveHeader(header, opt.Headers)
	if _, ok := idx[ColAge]; !ok {
		return nil, &SchemaError{Column: headerFor(ColAge, opt.Headers), Reason: "column not found"}
	}
	present := make([]Column, 0, len(idx))
	for c := range idx {
		present = append(present, c)
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var (
		rows    []Row
		total   int
		skipped int
	)
	for {
		rec, ok, err := next()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", total+1, err)
		}
		if !ok {
			break
		}
		if isBlank(rec) {
			continue
		}
		total++
		if len(rows) >= maxRows {
			skipped++
			continue
		}
		row, err := parseRow(rec, idx, total, opt)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	t, err := NewTable(name, rows, present)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		t.warnings = append(t.warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(rows), total))
	}
	return t, nil
}

func parseRow(rec []string, idx map[Column]int, line int, opt Options) (Row, error) {
	cell := func(c Column) string {
		i, ok := idx[c]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var r Row
	ageRaw := cell(ColAge)
	age, ok := parseNumeric(ageRaw)
	if !ok {
		return Row{}, &SchemaError{Column: headerFor(ColAge, opt.Headers), Row: line, Value: ageRaw, Reason: "not numeric"}
	}
	if math.IsInf(age, 0) || age < 0 {
		return Row{}, &SchemaError{Column: headerFor(ColAge, opt.Headers), Row: line, Value: ageRaw, Reason: "not a finite non-negative number"}
	}
	r.Age = age

	r.Gender = cell(ColGender)
	r.Category = cell(ColCategory)
	r.Item = cell(ColItem)
	r.Size = cell(ColSize)
	r.Season = cell(ColSeason)
	r.ShippingType = cell(ColShippingType)
	r.Location = cell(ColLocation)
	r.PurchaseFrequency = cell(ColPurchaseFrequency)
	if v, ok := parseNumeric(cell(ColPurchaseAmount)); ok && !math.IsInf(v, 0) {
		r.PurchaseAmount, r.HasPurchaseAmount = v, true
	}
	if v, ok := parseNumeric(cell(ColReviewRating)); ok && !math.IsInf(v, 0) {
		r.ReviewRating, r.HasReviewRating = v, true
	}
	return r, nil
}

// resolveHeader matches header cells to logical columns, case-insensitively.
func resolveHeader(header []string, names map[Column]string) map[Column]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	idx := make(map[Column]int)
	for _, c := range SourceColumns {
		if i, ok := pos[normalizeHeader(headerFor(c, names))]; ok {
			idx[c] = i
		}
	}
	return idx
}

func headerFor(c Column, names map[Column]string) string {
	if h, ok := names[c]; ok && strings.TrimSpace(h) != "" {
		return h
	}
	return DefaultHeaders()[c]
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseNumeric accepts '.' or ',' decimal separators, strips thousands
// separators and a leading currency symbol. Empty input is not numeric.
// "1,000" is one thousand; "1,5" and "1.000" are decimals.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimLeft(raw, "$€£¥")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := decimalSeparator(raw)
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// decimalSeparator picks the decimal separator of raw. With both ',' and '.'
// present the last one wins. A separator repeated on its own groups
// thousands, as does a single ',' followed by exactly three digits after a
// non-zero integer part.
func decimalSeparator(raw string) rune {
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			return ','
		}
		return '.'
	case cpos >= 0:
		if strings.Count(raw, ",") > 1 || isThousandsGroup(raw, cpos) {
			return '.'
		}
		return ','
	case dpos >= 0 && strings.Count(raw, ".") > 1:
		return ','
	default:
		return '.'
	}
}

func isThousandsGroup(raw string, pos int) bool {
	frac := raw[pos+1:]
	if len(frac) != 3 || strings.Trim(frac, "0123456789") != "" {
		return false
	}
	lead := strings.TrimLeft(raw[:pos], "+-")
	return lead != "" && lead != "0"
}
