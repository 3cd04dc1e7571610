// Package frame provides a small column-ordered table built from uniform
// records, with named-column sorting and selection and fixed-width text
// rendering for interactive output.
package frame

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is one row keyed by column name.
type Record map[string]any

// Frame is an ordered collection of records with a fixed column order.
// A Frame is built once and never mutated; Sort and Select return copies.
type Frame struct {
	cols []string
	rows []Record
}

// New creates a frame with the given column order and rows. Record values
// for columns outside cols are ignored; missing values render empty.
func New(cols []string, rows []Record) *Frame {
	c := make([]string, len(cols))
	copy(c, cols)
	r := make([]Record, len(rows))
	copy(r, rows)
	return &Frame{cols: c, rows: r}
}

// Columns returns the column names in display order.
func (f *Frame) Columns() []string {
	c := make([]string, len(f.cols))
	copy(c, f.cols)
	return c
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns the record at index i.
func (f *Frame) Row(i int) Record {
	return f.rows[i]
}

// Column returns all values of the named column in row order.
// The second return value is false if the column does not exist.
func (f *Frame) Column(name string) ([]any, bool) {
	if !f.hasColumn(name) {
		return nil, false
	}
	vals := make([]any, len(f.rows))
	for i, r := range f.rows {
		vals[i] = r[name]
	}
	return vals, true
}

// Sort returns a copy of the frame stably sorted by the named columns, all
// in the given direction. An unknown column name yields (nil, false) and
// leaves the receiver untouched.
func (f *Frame) Sort(asc bool, cols ...string) (*Frame, bool) {
	for _, c := range cols {
		if !f.hasColumn(c) {
			return nil, false
		}
	}

	rows := make([]Record, len(f.rows))
	copy(rows, f.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, c := range cols {
			cmp := compareValues(rows[i][c], rows[j][c])
			if cmp == 0 {
				continue
			}
			if asc {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	return &Frame{cols: f.Columns(), rows: rows}, true
}

// Select returns a copy of the frame restricted to the named columns, in
// the order given. An unknown column name yields (nil, false).
func (f *Frame) Select(cols ...string) (*Frame, bool) {
	for _, c := range cols {
		if !f.hasColumn(c) {
			return nil, false
		}
	}

	rows := make([]Record, len(f.rows))
	for i, r := range f.rows {
		row := make(Record, len(cols))
		for _, c := range cols {
			row[c] = r[c]
		}
		rows[i] = row
	}

	sel := make([]string, len(cols))
	copy(sel, cols)
	return &Frame{cols: sel, rows: rows}, true
}

// Apply returns a copy of the frame with fn applied to every value of the
// named column. An unknown column name yields (nil, false).
func (f *Frame) Apply(col string, fn func(any) any) (*Frame, bool) {
	if !f.hasColumn(col) {
		return nil, false
	}
	rows := make([]Record, len(f.rows))
	for i, r := range f.rows {
		row := make(Record, len(r))
		for k, v := range r {
			row[k] = v
		}
		row[col] = fn(row[col])
		rows[i] = row
	}
	return &Frame{cols: f.Columns(), rows: rows}, true
}

// String renders the frame as an aligned text table.
func (f *Frame) String() string {
	widths := make([]int, len(f.cols))
	for i, c := range f.cols {
		widths[i] = len(c)
	}

	cells := make([][]string, len(f.rows))
	for ri, r := range f.rows {
		line := make([]string, len(f.cols))
		for ci, c := range f.cols {
			s := formatCell(r[c])
			line[ci] = s
			if len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
		cells[ri] = line
	}

	var b strings.Builder
	for ci, c := range f.cols {
		if ci > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[ci], c)
	}
	b.WriteByte('\n')
	for ci := range f.cols {
		if ci > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[ci], strings.Repeat("-", len(f.cols[ci])))
	}
	b.WriteByte('\n')
	for _, line := range cells {
		for ci, s := range line {
			if ci > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[ci], s)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Frame) hasColumn(name string) bool {
	for _, c := range f.cols {
		if c == name {
			return true
		}
	}
	return false
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", x)
	}
}

// compareValues orders mixed cell values: nil sorts first, then numbers,
// times and strings within their own kind. Values of different kinds fall
// back to their string form so the sort stays total.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if na, aok := asFloat(a); aok {
		if nb, bok := asFloat(b); bok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	if ta, aok := asTime(a); aok {
		if tb, bok := asTime(b); bok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(formatCell(a), formatCell(b))
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	default:
		return time.Time{}, false
	}
}
