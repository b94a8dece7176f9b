package psb

import (
	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const dividendsTableName = "Выплата дивидендов"

var dividendsSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "дата"),
		table.NewColumn("isin", "isin"),
		table.NewColumn("value", "сумма"),
		table.NewColumn("currency", "валюта"),
	},
	Optional: []table.Column{
		table.NewColumn("count", "количество"),
	},
}

func (p *Parser) parseDividends(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, dividendsTableName, dividendsSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		isin := row.String("isin")
		if isin == "" {
			logger.L.Warn("PSB parser: skipping dividend row without ISIN", "table", dividendsTableName, "row", row.Index())
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping dividend row with invalid date", "table", dividendsTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping dividend row with invalid value", "table", dividendsTableName, "error", err)
			continue
		}
		count, err := row.Int("count")
		if err != nil {
			count = 0
		}

		stmt.Events = append(stmt.Events, models.EventCashFlow{
			Portfolio: stmt.Portfolio,
			ISIN:      isin,
			Kind:      models.EventDividend,
			Timestamp: timestamp,
			Count:     count,
			Value:     value,
			Currency:  row.String("currency"),
		})
	}
}
