package psb

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const (
	derivativeTradesTableName = "Сделки, совершенные с срочными контрактами"
	derivativeFlowsTableName  = "Движение денежных средств по срочным контрактам"
)

var derivativeTradesSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("trade_id", "номер", "сделки"),
		table.NewColumn("date", "дата", "заключения"),
		table.NewColumn("contract", "код", "контракта"),
		table.NewColumn("direction", "вид", "сделки"),
		table.NewColumn("count", "количество"),
		table.NewColumn("quote", "цена", "пункт"),
		table.NewColumn("currency", "валюта"),
	},
	Optional: []table.Column{
		// tick value first: its header contains the tick size keywords too
		table.NewColumn("tick_value", "стоимость", "шага"),
		table.NewColumn("tick_size", "шаг", "цены"),
		table.NewColumn("commission", "комиссия"),
	},
}

// parseDerivativeTrades maps futures and options trades. The quoted price is
// in index points; conversion to money happens in the trade builder and is
// skipped when the statement carries no tick metadata.
func (p *Parser) parseDerivativeTrades(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, derivativeTradesTableName, derivativeTradesSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		action, ok := parseAction(row.String("direction"))
		if !ok {
			logger.L.Warn("PSB parser: skipping derivative trade with unknown direction",
				"table", derivativeTradesTableName, "row", row.Index(), "direction", row.String("direction"))
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid date", "table", derivativeTradesTableName, "error", err)
			continue
		}
		count, err := row.Int("count")
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid count", "table", derivativeTradesTableName, "error", err)
			continue
		}
		quote, err := row.Decimal("quote")
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid quote", "table", derivativeTradesTableName, "error", err)
			continue
		}
		tickSize, err := row.DecimalOrZero("tick_size")
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid tick size", "table", derivativeTradesTableName, "error", err)
			continue
		}
		tickValue, err := row.DecimalOrZero("tick_value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid tick value", "table", derivativeTradesTableName, "error", err)
			continue
		}
		commission, err := row.DecimalOrZero("commission")
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade with invalid commission", "table", derivativeTradesTableName, "error", err)
			continue
		}

		securityID := p.resolveContract(row.String("contract"))
		currency := row.String("currency")
		// the statement quotes points per contract; flows store totals
		total := quote.Mul(decimal.NewFromInt(count))
		trade, security, err := processors.BuildTrade(processors.TradeInput{
			Portfolio:          stmt.Portfolio,
			TransactionID:      row.String("trade_id"),
			ISIN:               securityID,
			Ticker:             row.String("contract"),
			Timestamp:          timestamp,
			Action:             action,
			Count:              count,
			Kind:               models.KindDerivative,
			Value:              total,
			Commission:         commission,
			CommissionCurrency: currency,
			TickSize:           tickSize,
			TickValue:          tickValue,
			TickValueCurrency:  currency,
		})
		if err != nil {
			logger.L.Warn("PSB parser: skipping derivative trade row", "table", derivativeTradesTableName, "error", err)
			continue
		}
		stmt.Securities = append(stmt.Securities, security)
		stmt.Trades = append(stmt.Trades, trade)
	}
}

var derivativeFlowsSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "дата"),
		table.NewColumn("operation", "операция"),
		table.NewColumn("value", "сумма"),
		table.NewColumn("currency", "валюта"),
	},
	Optional: []table.Column{
		table.NewColumn("contract", "код", "контракта"),
		table.NewColumn("count", "количество"),
	},
}

// parseDerivativeCashFlows maps daily variation margin postings. Rows for
// collateral transfers and the like carry no contract and are skipped.
func (p *Parser) parseDerivativeCashFlows(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, derivativeFlowsTableName, derivativeFlowsSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		if !strings.Contains(strings.ToLower(row.String("operation")), "вариацион") {
			continue
		}
		contract := row.String("contract")
		if contract == "" {
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping variation margin row with invalid date", "table", derivativeFlowsTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping variation margin row with invalid value", "table", derivativeFlowsTableName, "error", err)
			continue
		}
		count, err := row.Int("count")
		if err != nil {
			count = 0 // optional
		}

		securityID := p.resolveContract(contract)
		stmt.Securities = append(stmt.Securities, models.Security{
			ISIN:   securityID,
			Ticker: contract,
			Kind:   models.KindDerivative,
		})
		stmt.Events = append(stmt.Events, models.EventCashFlow{
			Portfolio: stmt.Portfolio,
			ISIN:      securityID,
			Kind:      models.EventDerivativeProfit,
			Timestamp: timestamp,
			Count:     count,
			Value:     value,
			Currency:  row.String("currency"),
		})
	}
}

func (p *Parser) resolveContract(code string) string {
	if p.resolver == nil {
		return code
	}
	if id, ok := p.resolver.Resolve(code); ok {
		return id
	}
	return code
}
