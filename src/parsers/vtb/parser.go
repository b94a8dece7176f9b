// backend/src/parsers/vtb/parser.go
package vtb

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const (
	accountMarker     = "соглашение"
	cashFlowTableName = "Движение денежных средств"
)

var cashFlowSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "дата"),
		table.NewColumn("value", "сумма"),
		table.NewColumn("currency", "валюта"),
		table.NewColumn("operation", "тип", "операции"),
	},
	Optional: []table.Column{
		table.NewColumn("description", "комментарий").Or("примечание"),
	},
}

// Parser reads VTB broker statements. Only the cash movements table is
// mapped; VTB reports trades through a separate export handled elsewhere.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(file io.Reader) (*models.Statement, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("vtb parser: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := table.FirstSheet(f)
	if err != nil {
		return nil, fmt.Errorf("vtb parser: %w", err)
	}

	account, ok := sheet.FindValueAfter(accountMarker)
	if !ok {
		return nil, fmt.Errorf("vtb parser: account number not found in report")
	}

	stmt := &models.Statement{Portfolio: account}
	p.parseCashFlows(sheet, stmt)
	return stmt, nil
}

func (p *Parser) parseCashFlows(sheet *table.Sheet, stmt *models.Statement) {
	tbl, err := sheet.Find(cashFlowTableName, cashFlowSpec)
	if err != nil {
		stmt.SkippedTables = append(stmt.SkippedTables, cashFlowTableName)
		if errors.Is(err, table.ErrTableNotFound) {
			logger.L.Debug("Table absent from statement", "table", cashFlowTableName)
		} else {
			logger.L.Warn("Skipping malformed table", "table", cashFlowTableName, "error", err)
		}
		return
	}

	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		kind, sign, ok := classifyOperation(row.String("operation"), row.String("description"))
		if !ok {
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("VTB parser: skipping cash row with invalid date", "table", cashFlowTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("VTB parser: skipping cash row with invalid value", "table", cashFlowTableName, "error", err)
			continue
		}

		stmt.Events = append(stmt.Events, models.EventCashFlow{
			Portfolio: stmt.Portfolio,
			Kind:      kind,
			Timestamp: timestamp,
			Value:     value.Abs().Mul(decimal.NewFromInt(sign)),
			Currency:  row.String("currency"),
		})
	}
}

// classifyOperation maps the operation type cell (plus the free-form
// comment) to an event kind and sign. Unrecognized operations are broker
// internals and map to nothing.
func classifyOperation(operation, description string) (models.EventKind, int64, bool) {
	op := strings.ToLower(operation)
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(op, "дивиденд") || strings.Contains(desc, "дивиденд"):
		return models.EventDividend, 1, true
	case strings.Contains(op, "купон") || strings.Contains(desc, "купон"):
		return models.EventCoupon, 1, true
	case strings.Contains(op, "налог"):
		return models.EventTax, -1, true
	case strings.Contains(op, "зачислен"):
		return models.EventCash, 1, true
	case strings.Contains(op, "списан"):
		return models.EventCash, -1, true
	default:
		return "", 0, false
	}
}
