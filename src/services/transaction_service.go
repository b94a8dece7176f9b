package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/store"
)

// TransactionView is a stored transaction folded back into the read
// convention a statement uses: unsigned count, explicit action, per-unit
// prices. It is what an edit form works with.
type TransactionView struct {
	Portfolio     string
	TransactionID string
	ISIN          string
	SecurityName  string
	Timestamp     string
	Action        processors.Action
	Count         int64
	Kind          models.SecurityKind

	Price         decimal.Decimal // per unit; points per unit for derivatives
	PriceCurrency string

	AccruedInterest    decimal.Decimal // per unit
	Commission         decimal.Decimal // total, unsigned
	CommissionCurrency string

	TickSize          decimal.Decimal
	TickValue         decimal.Decimal
	TickValueCurrency string
}

// TransactionService reads stored transactions back into views and saves
// edited views through the same normalization path a parsed statement takes.
type TransactionService struct {
	store store.Store
}

func NewTransactionService(st store.Store) *TransactionService {
	return &TransactionService{store: st}
}

// Get reconstructs the view for one transaction. The second return is false
// when the transaction does not exist.
func (s *TransactionService) Get(ctx context.Context, portfolio, id string) (*TransactionView, bool, error) {
	tx, found, err := s.store.FindTransaction(ctx, portfolio, id)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	flows, err := s.store.FindTransactionCashFlows(ctx, portfolio, id)
	if err != nil {
		return nil, false, err
	}

	view := &TransactionView{
		Portfolio:     tx.Portfolio,
		TransactionID: tx.ID,
		ISIN:          tx.ISIN,
		Timestamp:     tx.Timestamp.Format("2006-01-02 15:04:05"),
		Action:        processors.ActionBuy,
		Count:         tx.Count,
	}
	if tx.Count < 0 {
		view.Action = processors.ActionSell
		view.Count = -tx.Count
	}

	if sec, ok, err := s.store.FindSecurity(ctx, tx.ISIN); err != nil {
		return nil, false, err
	} else if ok {
		view.SecurityName = sec.Name
		view.Kind = sec.Kind
	}

	var derivativeMoney decimal.Decimal
	var derivativeMoneyCurrency string
	hasAccrued := false
	hasQuote := false
	for _, flow := range flows {
		switch flow.Kind {
		case models.FlowPrice:
			view.Price = processors.UnitPrice(flow.Value, tx.Count)
			view.PriceCurrency = flow.Currency
		case models.FlowDerivativeQuote:
			view.Price = processors.UnitPrice(flow.Value, tx.Count)
			view.PriceCurrency = flow.Currency
			hasQuote = true
		case models.FlowAccruedInterest:
			view.AccruedInterest = processors.UnitPrice(flow.Value, tx.Count)
			hasAccrued = true
		case models.FlowDerivativePrice:
			derivativeMoney = processors.UnitPrice(flow.Value, tx.Count)
			derivativeMoneyCurrency = flow.Currency
		case models.FlowCommission:
			view.Commission = flow.Value.Abs()
			view.CommissionCurrency = flow.Currency
		}
	}

	// The flows are more authoritative than the stored security kind, and
	// accrued interest is more authoritative than a derivative quote.
	if hasQuote {
		view.Kind = models.KindDerivative
	}
	if hasAccrued {
		view.Kind = models.KindBond
	}

	// Fold the point-to-money conversion into a unit tick so the view shows
	// a plain tick value instead of exchange contract metadata.
	if hasQuote && !derivativeMoney.IsZero() && !view.Price.IsZero() {
		view.TickSize = decimal.NewFromInt(1)
		view.TickValue = derivativeMoney.DivRound(view.Price, 6)
		view.TickValueCurrency = derivativeMoneyCurrency
	}

	return view, true, nil
}

// Save replaces the stored transaction with the edited view. The view runs
// through the same trade normalization as a parsed statement row, so all
// sign and reclassification rules hold for edits too.
func (s *TransactionService) Save(ctx context.Context, view *TransactionView) error {
	timestamp, err := parseViewTimestamp(view.Timestamp)
	if err != nil {
		return fmt.Errorf("transaction %s/%s: %w", view.Portfolio, view.TransactionID, err)
	}
	count := decimal.NewFromInt(view.Count)
	trade, security, err := processors.BuildTrade(processors.TradeInput{
		Portfolio:          view.Portfolio,
		TransactionID:      view.TransactionID,
		ISIN:               view.ISIN,
		SecurityName:       view.SecurityName,
		Timestamp:          timestamp,
		Action:             view.Action,
		Count:              view.Count,
		Kind:               view.Kind,
		Value:              view.Price.Mul(count),
		ValueCurrency:      view.PriceCurrency,
		AccruedInterest:    view.AccruedInterest.Mul(count),
		Commission:         view.Commission,
		CommissionCurrency: view.CommissionCurrency,
		TickSize:           view.TickSize,
		TickValue:          view.TickValue,
		TickValueCurrency:  view.TickValueCurrency,
	})
	if err != nil {
		return err
	}

	// Drop the old rows first so an edit fully replaces the flows instead of
	// leaving stale kinds behind.
	if err := s.store.DeleteTransactionCashFlows(ctx, view.Portfolio, view.TransactionID); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, view.Portfolio, view.TransactionID); err != nil {
		return err
	}

	if res, err := s.store.UpsertPortfolio(ctx, models.Portfolio{ID: view.Portfolio}); err != nil {
		return err
	} else if res.Outcome == store.Rejected {
		return fmt.Errorf("portfolio %s rejected: %s", view.Portfolio, res.Reason)
	}
	if res, err := s.store.UpsertSecurity(ctx, security); err != nil {
		return err
	} else if res.Outcome == store.Rejected {
		return fmt.Errorf("security %s rejected: %s", security.ISIN, res.Reason)
	}
	if res, err := s.store.UpsertTransaction(ctx, trade.Transaction); err != nil {
		return err
	} else if res.Outcome == store.Rejected {
		return fmt.Errorf("transaction %s/%s rejected: %s", view.Portfolio, view.TransactionID, res.Reason)
	}
	for _, flow := range trade.CashFlows {
		if res, err := s.store.UpsertTransactionCashFlow(ctx, flow); err != nil {
			return err
		} else if res.Outcome == store.Rejected {
			return fmt.Errorf("cash flow %s/%s/%s rejected: %s", view.Portfolio, view.TransactionID, flow.Kind, res.Reason)
		}
	}
	return nil
}

// Delete removes a transaction and its cash flows.
func (s *TransactionService) Delete(ctx context.Context, portfolio, id string) error {
	if err := s.store.DeleteTransactionCashFlows(ctx, portfolio, id); err != nil {
		return err
	}
	return s.store.DeleteTransaction(ctx, portfolio, id)
}

func parseViewTimestamp(value string) (t time.Time, err error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
