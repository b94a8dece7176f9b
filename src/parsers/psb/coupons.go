package psb

import (
	"strings"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/table"
	"github.com/username/investfolio/backend/src/utils"
)

const couponsTableName = "Погашение купонов и ценных бумаг"

var couponsSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "дата"),
		table.NewColumn("isin", "isin"),
		table.NewColumn("operation", "операция"),
		table.NewColumn("value", "сумма"),
		table.NewColumn("currency", "валюта"),
	},
	Optional: []table.Column{
		table.NewColumn("count", "количество"),
	},
}

// parseCoupons maps coupon, amortization and redemption payouts. These are
// security events, never transactions. The referenced security is emitted
// too: amortization may arrive before any trade mentioned the bond.
func (p *Parser) parseCoupons(sheet *table.Sheet, stmt *models.Statement) {
	tbl := locate(sheet, stmt, couponsTableName, couponsSpec)
	if tbl == nil {
		return
	}
	for _, row := range tbl.Rows() {
		if row.IsEmpty() {
			continue
		}
		kind, ok := couponEventKind(row.String("operation"))
		if !ok {
			logger.L.Warn("PSB parser: skipping payout row with unknown operation",
				"table", couponsTableName, "row", row.Index(), "operation", row.String("operation"))
			continue
		}
		isin := row.String("isin")
		if isin == "" {
			logger.L.Warn("PSB parser: skipping payout row without ISIN", "table", couponsTableName, "row", row.Index())
			continue
		}
		timestamp, err := row.Date("date", utils.StatementDateLayouts...)
		if err != nil {
			logger.L.Warn("PSB parser: skipping payout row with invalid date", "table", couponsTableName, "error", err)
			continue
		}
		value, err := row.Decimal("value")
		if err != nil {
			logger.L.Warn("PSB parser: skipping payout row with invalid value", "table", couponsTableName, "error", err)
			continue
		}
		count, err := row.Int("count")
		if err != nil {
			count = 0
		}

		stmt.Securities = append(stmt.Securities, models.Security{ISIN: isin, Kind: models.KindBond})
		stmt.Events = append(stmt.Events, models.EventCashFlow{
			Portfolio: stmt.Portfolio,
			ISIN:      isin,
			Kind:      kind,
			Timestamp: timestamp,
			Count:     count,
			Value:     value,
			Currency:  row.String("currency"),
		})
	}
}

func couponEventKind(raw string) (models.EventKind, bool) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "купон"):
		return models.EventCoupon, true
	case strings.Contains(lower, "амортизац"):
		return models.EventAmortization, true
	case strings.Contains(lower, "погашен"):
		return models.EventRedemption, true
	default:
		return "", false
	}
}
