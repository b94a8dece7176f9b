// backend/src/parsers/psb/parser.go
package psb

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/table"
)

const accountMarker = "договор"

// Parser reads PSB broker statements: one xlsx sheet with several stacked
// tables, each announced by a title cell.
type Parser struct {
	resolver processors.DerivativeCodeResolver
}

// NewParser creates a PSB statement parser. The resolver maps display-form
// derivative contract codes to canonical security ids.
func NewParser(resolver processors.DerivativeCodeResolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse extracts all known logical tables. Tables absent from the statement
// or with unresolvable headers are skipped and recorded; rows that fail to
// map are logged and skipped without aborting their table.
func (p *Parser) Parse(file io.Reader) (*models.Statement, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("psb parser: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := table.FirstSheet(f)
	if err != nil {
		return nil, fmt.Errorf("psb parser: %w", err)
	}

	account, ok := sheet.FindValueAfter(accountMarker)
	if !ok {
		return nil, fmt.Errorf("psb parser: account number not found in report")
	}

	stmt := &models.Statement{Portfolio: account}
	p.parseSecurities(sheet, stmt)
	p.parseTrades(sheet, stmt)
	p.parseDerivativeTrades(sheet, stmt)
	p.parseCoupons(sheet, stmt)
	p.parseDividends(sheet, stmt)
	p.parseDerivativeCashFlows(sheet, stmt)
	p.parseCashFlows(sheet, stmt)
	return stmt, nil
}

// locate applies the table skip policy: a missing table means this statement
// simply has no such data, a malformed one is skipped with a warning. Either
// way the caller gets nil and the table is recorded as skipped.
func locate(sheet *table.Sheet, stmt *models.Statement, name string, spec table.Spec) *table.Table {
	tbl, err := sheet.Find(name, spec)
	if err != nil {
		stmt.SkippedTables = append(stmt.SkippedTables, name)
		if errors.Is(err, table.ErrTableNotFound) {
			logger.L.Debug("Table absent from statement", "table", name)
		} else {
			logger.L.Warn("Skipping malformed table", "table", name, "error", err)
		}
		return nil
	}
	return tbl
}
