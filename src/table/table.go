package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrTableNotFound means a named table is absent from the sheet. Callers
	// treat it as "this statement does not contain this data", not as fatal.
	ErrTableNotFound = errors.New("table not found")
	// ErrTableMalformed means the table exists but its header row failed to
	// resolve the required columns.
	ErrTableMalformed = errors.New("table malformed")
)

// Sheet is a 2-D grid of cell values. Reports position tables loosely, so all
// addressing goes through named tables and logical columns, never fixed
// coordinates.
type Sheet struct {
	name string
	rows [][]string
}

// NewSheet builds a sheet from raw rows. Used for non-Excel tabular sources
// and in tests.
func NewSheet(name string, rows [][]string) *Sheet {
	return &Sheet{name: name, rows: rows}
}

// NewSheetFromFile reads one worksheet of an opened workbook.
func NewSheetFromFile(f *excelize.File, name string) (*Sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	return &Sheet{name: name, rows: rows}, nil
}

// FirstSheet reads the first worksheet of an opened workbook.
func FirstSheet(f *excelize.File) (*Sheet, error) {
	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return NewSheetFromFile(f, list[0])
}

func (s *Sheet) Name() string { return s.name }

// FindValueAfter scans for a cell containing marker and returns the next
// non-empty cell of the same row. Broker reports carry metadata like the
// account number as "label: value" cell pairs outside any table.
func (s *Sheet) FindValueAfter(marker string) (string, bool) {
	want := normalizeText(marker)
	for _, row := range s.rows {
		for i, cell := range row {
			if cell == "" || !strings.Contains(normalizeText(cell), want) {
				continue
			}
			// value may share the label cell after a colon
			if _, after, found := strings.Cut(cell, ":"); found && strings.TrimSpace(after) != "" {
				return strings.TrimSpace(after), true
			}
			for j := i + 1; j < len(row); j++ {
				if v := strings.TrimSpace(row[j]); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// Spec declares the logical columns of a table. Missing required columns make
// the table malformed; missing optional columns simply resolve to absent.
// When keyword sets overlap ("Шаг цены" vs "Стоимость шага цены"), declare
// the more specific column first: resolution prefers unclaimed positions in
// declaration order.
type Spec struct {
	Required []Column
	Optional []Column
}

// Table is a located block of rows bound to resolved logical columns.
type Table struct {
	sheet   *Sheet
	name    string
	columns map[string]int
	start   int // first data row
	end     int // one past the last data row
}

// Find locates the table announced by a marker cell containing name. The
// header is the next non-empty row; data rows run until a blank separator
// row, the next table marker, or sheet end.
func (s *Sheet) Find(name string, spec Spec) (*Table, error) {
	marker := normalizeText(name)
	for i, row := range s.rows {
		if !rowContains(row, marker) {
			continue
		}
		headerRow := -1
		for j := i + 1; j < len(s.rows); j++ {
			if !isBlank(s.rows[j]) {
				headerRow = j
				break
			}
		}
		if headerRow == -1 {
			return nil, fmt.Errorf("%w: %q has no header row", ErrTableMalformed, name)
		}
		return s.makeTable(name, headerRow, spec)
	}
	return nil, fmt.Errorf("%w: %q in sheet %q", ErrTableNotFound, name, s.name)
}

// WholeSheet treats the first non-empty row as the header of a single
// unnamed table covering the rest of the sheet.
func (s *Sheet) WholeSheet(spec Spec) (*Table, error) {
	for i, row := range s.rows {
		if !isBlank(row) {
			return s.makeTable(s.name, i, spec)
		}
	}
	return nil, fmt.Errorf("%w: sheet %q is empty", ErrTableNotFound, s.name)
}

func (s *Sheet) makeTable(name string, headerRow int, spec Spec) (*Table, error) {
	headers := s.rows[headerRow]
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeText(h)
	}
	columns := make(map[string]int, len(spec.Required)+len(spec.Optional))
	used := make(map[int]string)

	resolve := func(col Column) (int, error) {
		pos, err := col.matchIn(normalized, used)
		if err != nil {
			return -1, err
		}
		used[pos] = col.Name
		return pos, nil
	}

	for _, col := range spec.Required {
		pos, err := resolve(col)
		if err != nil {
			return nil, fmt.Errorf("%w: table %q: %w", ErrTableMalformed, name, err)
		}
		columns[col.Name] = pos
	}
	for _, col := range spec.Optional {
		pos, err := resolve(col)
		if err != nil {
			if errors.Is(err, ErrColumnAmbiguous) {
				return nil, fmt.Errorf("%w: table %q: %w", ErrTableMalformed, name, err)
			}
			continue // optional column absent
		}
		columns[col.Name] = pos
	}

	start := headerRow + 1
	end := len(s.rows)
	for i := start; i < len(s.rows); i++ {
		if isBlank(s.rows[i]) || isMarker(s.rows[i]) {
			end = i
			break
		}
	}

	return &Table{sheet: s, name: name, columns: columns, start: start, end: end}, nil
}

func (t *Table) Name() string { return t.name }

// HasColumn reports whether an optional column resolved.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Rows returns the data rows in file order. Each call yields a fresh slice,
// so the sequence is restartable.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, t.end-t.start)
	for i := t.start; i < t.end; i++ {
		rows = append(rows, Row{table: t, cells: t.sheet.rows[i], index: i})
	}
	return rows
}

func rowContains(row []string, marker string) bool {
	for _, cell := range row {
		if cell == "" {
			continue
		}
		if strings.Contains(normalizeText(cell), marker) {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isMarker detects a section divider: a row whose only populated cell is the
// first one, which in broker reports announces the next stacked table. A lone
// cell in a later column is table content (a totals label, a note), not a
// divider.
func isMarker(row []string) bool {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
