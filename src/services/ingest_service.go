package services

import (
	"context"
	"fmt"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/store"
)

// Rejection records an entity the store refused, with the store's reason.
type Rejection struct {
	Entity string
	Key    string
	Reason string
}

// Summary is the per-statement ingestion report.
type Summary struct {
	File          string
	Accepted      int
	Duplicates    int
	Rejections    []Rejection
	SkippedTables []string
}

func (s *Summary) record(entity, key string, res store.Result) {
	switch res.Outcome {
	case store.Accepted:
		s.Accepted++
	case store.Duplicate:
		s.Duplicates++
	case store.Rejected:
		s.Rejections = append(s.Rejections, Rejection{Entity: entity, Key: key, Reason: res.Reason})
		logger.L.Warn("Entity rejected by store", "entity", entity, "key", key, "reason", res.Reason)
	}
}

// IngestService writes parsed statements to the store in dependency order:
// portfolio, securities, transactions, then the cash flows that hang off them.
// A rejected entity is logged and skipped; only store unavailability aborts
// the statement.
type IngestService struct {
	store store.Store
}

func NewIngestService(st store.Store) *IngestService {
	return &IngestService{store: st}
}

func (s *IngestService) IngestStatement(ctx context.Context, stmt *models.Statement) (*Summary, error) {
	sum := &Summary{SkippedTables: stmt.SkippedTables}

	if stmt.Portfolio != "" {
		res, err := s.store.UpsertPortfolio(ctx, models.Portfolio{ID: stmt.Portfolio})
		if err != nil {
			return nil, err
		}
		sum.record("portfolio", stmt.Portfolio, res)
	}

	for _, sec := range stmt.Securities {
		res, err := s.store.UpsertSecurity(ctx, sec)
		if err != nil {
			return nil, err
		}
		sum.record("security", sec.ISIN, res)
	}

	for _, trade := range stmt.Trades {
		txKey := fmt.Sprintf("%s/%s", trade.Transaction.Portfolio, trade.Transaction.ID)
		res, err := s.store.UpsertTransaction(ctx, trade.Transaction)
		if err != nil {
			return nil, err
		}
		sum.record("transaction", txKey, res)
		if res.Outcome == store.Rejected {
			// No owning row, so its cash flows cannot be stored either.
			continue
		}
		for _, flow := range trade.CashFlows {
			res, err := s.store.UpsertTransactionCashFlow(ctx, flow)
			if err != nil {
				return nil, err
			}
			sum.record("transaction_cash_flow", fmt.Sprintf("%s/%s", txKey, flow.Kind), res)
		}
	}

	for _, event := range stmt.Events {
		res, err := s.store.UpsertEventCashFlow(ctx, event)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%s/%s/%s@%s", event.Portfolio, event.ISIN, event.Kind, event.Timestamp.Format("2006-01-02"))
		sum.record("event_cash_flow", key, res)
	}

	for _, rate := range stmt.ExchangeRates {
		res, err := s.store.UpsertExchangeRate(ctx, rate)
		if err != nil {
			return nil, err
		}
		sum.record("exchange_rate", rate.CurrencyPair+"@"+rate.Date, res)
	}

	return sum, nil
}
