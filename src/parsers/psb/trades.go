package psb

import (
	"strings"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const tradesTableName = "Сделки, совершенные с ценными бумагами"

var tradesSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("trade_id", "номер", "сделки"),
		table.NewColumn("date", "дата", "заключения"),
		table.NewColumn("direction", "вид", "сделки"),
		table.NewColumn("isin", "isin"),
		table.NewColumn("count", "количество"),
		table.NewColumn("value", "сумма", "сделки"),
		table.NewColumn("currency", "валюта"),
	},
	Optional: []table.Column{
		table.NewColumn("accrued_interest", "нкд").Or("накопленный", "доход"),
		table.NewColumn("commission", "комиссия"),
	},
}

// parseTrades maps the stock and bond trades table. Sign conventions,
// zero-flow suppression and bond reclassification on accrued interest all
// happen in the trade builder.
func (p *Parser) parseTrades(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, tradesTableName, tradesSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		action, ok := parseAction(row.String("direction"))
		if !ok {
			logger.L.Warn("PSB parser: skipping trade row with unknown direction",
				"table", tradesTableName, "row", row.Index(), "direction", row.String("direction"))
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row with invalid date", "table", tradesTableName, "error", err)
			continue
		}
		count, err := row.Int("count")
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row with invalid count", "table", tradesTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row with invalid value", "table", tradesTableName, "error", err)
			continue
		}
		accrued, err := row.DecimalOrZero("accrued_interest")
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row with invalid accrued interest", "table", tradesTableName, "error", err)
			continue
		}
		commission, err := row.DecimalOrZero("commission")
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row with invalid commission", "table", tradesTableName, "error", err)
			continue
		}

		currency := row.String("currency")
		trade, security, err := processors.BuildTrade(processors.TradeInput{
			Portfolio:          stmt.Portfolio,
			TransactionID:      row.String("trade_id"),
			ISIN:               row.String("isin"),
			Timestamp:          timestamp,
			Action:             action,
			Count:              count,
			Kind:               models.KindShare,
			Value:              value,
			ValueCurrency:      currency,
			AccruedInterest:    accrued,
			Commission:         commission,
			CommissionCurrency: currency,
		})
		if err != nil {
			logger.L.Warn("PSB parser: skipping trade row", "table", tradesTableName, "error", err)
			continue
		}
		stmt.Securities = append(stmt.Securities, security)
		stmt.Trades = append(stmt.Trades, trade)
	}
}

func parseAction(raw string) (processors.Action, bool) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "покупка"):
		return processors.ActionBuy, true
	case strings.Contains(lower, "продажа"):
		return processors.ActionSell, true
	default:
		return "", false
	}
}
