// Package store is the boundary between the ingestion pipeline and
// persistence. Every write is an idempotent upsert keyed by the record's
// natural key; repeating a write is reported as a duplicate, never as an
// error, because statements are routinely re-imported.
package store

import (
	"context"
	"errors"

	"github.com/username/investfolio/backend/src/models"
)

// Outcome is the tri-state result of an upsert.
type Outcome int

const (
	// Accepted means the record was written for the first time.
	Accepted Outcome = iota
	// Duplicate means a record already exists under this natural key.
	// Idempotent success, not an error.
	Duplicate
	// Rejected means the record failed validation and was not written.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result carries the outcome of one upsert. Reason is set when Rejected.
type Result struct {
	Outcome Outcome
	Reason  string
}

// ErrUnavailable wraps connectivity and timeout failures. Unlike a
// rejection, it aborts the whole statement file; the caller may retry the
// file later.
var ErrUnavailable = errors.New("store unavailable")

// Store is the persistence contract consumed by the ingestion pipeline. An
// error return is always a hard failure (wrapped ErrUnavailable); validation
// problems come back as a Rejected result instead.
type Store interface {
	UpsertPortfolio(ctx context.Context, p models.Portfolio) (Result, error)
	UpsertSecurity(ctx context.Context, s models.Security) (Result, error)
	UpsertTransaction(ctx context.Context, t models.Transaction) (Result, error)
	UpsertTransactionCashFlow(ctx context.Context, f models.TransactionCashFlow) (Result, error)
	UpsertEventCashFlow(ctx context.Context, e models.EventCashFlow) (Result, error)
	UpsertExchangeRate(ctx context.Context, r models.ExchangeRate) (Result, error)

	TransactionExists(ctx context.Context, portfolio, id string) (bool, error)
	FindTransaction(ctx context.Context, portfolio, id string) (models.Transaction, bool, error)
	FindTransactionCashFlows(ctx context.Context, portfolio, id string) ([]models.TransactionCashFlow, error)
	FindSecurity(ctx context.Context, isin string) (models.Security, bool, error)
	FindExchangeRate(ctx context.Context, currencyPair, date string) (models.ExchangeRate, bool, error)

	DeleteTransaction(ctx context.Context, portfolio, id string) error
	DeleteTransactionCashFlows(ctx context.Context, portfolio, id string) error
}
