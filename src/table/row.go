package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one data row of a located table. Cells are addressed only by
// logical column name.
type Row struct {
	table *Table
	cells []string
	index int
}

// Index is the physical row position in the sheet, for log context.
func (r Row) Index() int { return r.index }

// IsEmpty reports whether all resolved columns are blank in this row.
func (r Row) IsEmpty() bool {
	for _, pos := range r.table.columns {
		if pos < len(r.cells) && strings.TrimSpace(r.cells[pos]) != "" {
			return false
		}
	}
	return true
}

// String returns the trimmed cell text, or "" when the column is absent.
func (r Row) String(column string) string {
	pos, ok := r.table.columns[column]
	if !ok || pos >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[pos])
}

// Decimal parses a monetary or numeric cell. Space and non-breaking-space
// digit grouping is dropped; a comma decimal separator is accepted.
func (r Row) Decimal(column string) (decimal.Decimal, error) {
	s := r.String(column)
	if s == "" {
		return decimal.Zero, fmt.Errorf("row %d: column %q is empty", r.index, column)
	}
	d, err := decimal.NewFromString(normalizeNumber(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("row %d: column %q: invalid number %q", r.index, column, s)
	}
	return d, nil
}

// DecimalOrZero parses a numeric cell, treating an empty cell as zero.
func (r Row) DecimalOrZero(column string) (decimal.Decimal, error) {
	if r.String(column) == "" {
		return decimal.Zero, nil
	}
	return r.Decimal(column)
}

// Int parses an integral cell.
func (r Row) Int(column string) (int64, error) {
	d, err := r.Decimal(column)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("row %d: column %q: %s is not an integer", r.index, column, d)
	}
	return d.IntPart(), nil
}

// Date parses a date or datetime cell against the given layouts in order.
func (r Row) Date(column string, layouts ...string) (time.Time, error) {
	s := r.String(column)
	if s == "" {
		return time.Time{}, fmt.Errorf("row %d: column %q is empty", r.index, column)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("row %d: column %q: unparseable date %q", r.index, column, s)
}

func normalizeNumber(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// comma is digit grouping
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return s
}
