package psb

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const cashTableName = "Движение денежных средств за период"

var cashSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "дата"),
		table.NewColumn("operation", "операция"),
		table.NewColumn("value", "сумма"),
		table.NewColumn("currency", "валюта"),
	},
}

// parseCashFlows maps account-level deposits and withdrawals. These rows
// never produce a transaction, only a portfolio cash event; withdrawals are
// stored negative.
func (p *Parser) parseCashFlows(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, cashTableName, cashSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		operation := strings.ToLower(row.String("operation"))
		var sign int64
		switch {
		case strings.Contains(operation, "зачислен"):
			sign = 1
		case strings.Contains(operation, "списан"):
			sign = -1
		default:
			// internal transfers and collateral moves are not cash events
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping cash row with invalid date", "table", cashTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping cash row with invalid value", "table", cashTableName, "error", err)
			continue
		}

		stmt.Events = append(stmt.Events, models.EventCashFlow{
			Portfolio: stmt.Portfolio,
			Kind:      models.EventCash,
			Timestamp: timestamp,
			Value:     value.Abs().Mul(decimal.NewFromInt(sign)),
			Currency:  row.String("currency"),
		})
	}
}
