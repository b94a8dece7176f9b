// backend/src/processors/trade_builder.go
package processors

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/investfolio/backend/src/models"
)

// Action is the trade direction as printed in a statement.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// moneyScale is the fixed precision for all monetary rounding (half-up).
const moneyScale = 6

// TradeInput carries one trade row in read convention: all magnitudes
// unsigned, direction in Action. For derivatives Value is quoted in index
// points and the tick fields describe the conversion to money.
type TradeInput struct {
	Portfolio     string
	TransactionID string
	ISIN          string
	SecurityName  string
	Ticker        string
	Timestamp     time.Time
	Action        Action
	Count         int64 // unsigned number of units
	Kind          models.SecurityKind

	Value         decimal.Decimal // total trade value; points for derivatives
	ValueCurrency string

	AccruedInterest    decimal.Decimal // unsigned total
	Commission         decimal.Decimal // unsigned total
	CommissionCurrency string

	TickSize          decimal.Decimal
	TickValue         decimal.Decimal
	TickValueCurrency string
}

// BuildTrade turns a read-convention trade row into the stored transaction,
// its cash flows, and the security it references. Storage conventions:
// count is abs(count)*direction, flow values carry the opposite sign of the
// count (a buy is cash out), commission is always stored negative, and
// zero-valued flows are not emitted at all.
//
// An accrued-interest flow reclassifies the instrument as a bond and a
// derivative quote reclassifies it as a derivative, whatever the row's kind
// metadata said. Interest is the more authoritative signal; nothing
// overrides it in turn.
func BuildTrade(in TradeInput) (models.Trade, models.Security, error) {
	if in.Portfolio == "" || in.TransactionID == "" {
		return models.Trade{}, models.Security{}, fmt.Errorf("trade %s/%s: portfolio and transaction id are required", in.Portfolio, in.TransactionID)
	}
	if in.Count <= 0 {
		return models.Trade{}, models.Security{}, fmt.Errorf("trade %s/%s: count must be positive, got %d", in.Portfolio, in.TransactionID, in.Count)
	}
	var direction int64
	switch in.Action {
	case ActionBuy:
		direction = 1
	case ActionSell:
		direction = -1
	default:
		return models.Trade{}, models.Security{}, fmt.Errorf("trade %s/%s: unknown action %q", in.Portfolio, in.TransactionID, in.Action)
	}

	kind := in.Kind
	if !in.AccruedInterest.IsZero() {
		kind = models.KindBond
	}

	// Flow values take the opposite sign of the count.
	flowSign := decimal.NewFromInt(-direction)

	trade := models.Trade{
		Transaction: models.Transaction{
			Portfolio: in.Portfolio,
			ID:        in.TransactionID,
			ISIN:      in.ISIN,
			Timestamp: in.Timestamp,
			Count:     in.Count * direction,
		},
	}

	addFlow := func(fk models.CashFlowKind, value decimal.Decimal, currency string) {
		if value.IsZero() {
			return
		}
		trade.CashFlows = append(trade.CashFlows, models.TransactionCashFlow{
			Portfolio:     in.Portfolio,
			TransactionID: in.TransactionID,
			Kind:          fk,
			Value:         value,
			Currency:      currency,
		})
	}

	if kind == models.KindDerivative {
		points := in.Value.Abs().Mul(flowSign)
		addFlow(models.FlowDerivativeQuote, points, in.TickValueCurrency)
		if money, ok := DerivativeValue(points, in.TickValue, in.TickSize); ok {
			addFlow(models.FlowDerivativePrice, money, in.TickValueCurrency)
		}
	} else {
		addFlow(models.FlowPrice, in.Value.Abs().Mul(flowSign), in.ValueCurrency)
		addFlow(models.FlowAccruedInterest, in.AccruedInterest.Abs().Mul(flowSign), in.ValueCurrency)
	}
	// Commission is a cost regardless of direction.
	addFlow(models.FlowCommission, in.Commission.Abs().Neg(), in.CommissionCurrency)

	security := models.Security{
		ISIN:   in.ISIN,
		Name:   in.SecurityName,
		Ticker: in.Ticker,
		Kind:   kind,
	}
	return trade, security, nil
}

// UnitPrice reconstructs the per-unit price of a stored cash flow value:
// abs(value) / count, rounded half-up to six digits. Also used to apportion
// accrued interest totals back to one unit on the read path.
func UnitPrice(value decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return value.Abs().DivRound(decimal.NewFromInt(count).Abs(), moneyScale)
}

// DerivativeValue converts a value quoted in index points to money:
// points * tickValue / tickSize, rounded half-up to six digits. The
// conversion is skipped when tick metadata is absent or the tick size is
// zero, in which case ok is false and no monetary price exists.
func DerivativeValue(points, tickValue, tickSize decimal.Decimal) (decimal.Decimal, bool) {
	if tickSize.IsZero() || tickValue.IsZero() {
		return decimal.Zero, false
	}
	return points.Mul(tickValue).DivRound(tickSize, moneyScale), true
}
