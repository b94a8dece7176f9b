package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/investfolio/backend/src/models"
)

const timestampLayout = time.RFC3339

// SQLStore implements Store over a sqlite database. Uniqueness is enforced
// by the natural-key constraints in the schema; a unique-constraint failure
// is the duplicate signal, everything else from the driver is either a
// validation rejection or, for timeouts, a hard failure.
type SQLStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLStore wraps an opened database. Every call runs under a bounded
// timeout so a wedged store surfaces as ErrUnavailable instead of hanging
// the pipeline.
func NewSQLStore(db *sql.DB, timeout time.Duration) *SQLStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SQLStore{db: db, timeout: timeout}
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// classify maps a driver error to the upsert contract.
func classify(err error) (Result, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	// lock contention between concurrent pipelines is transient store
	// trouble, not a property of the record
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked") {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if strings.Contains(msg, "unique constraint failed") {
		return Result{Outcome: Duplicate}, nil
	}
	return Result{Outcome: Rejected, Reason: err.Error()}, nil
}

func rejected(format string, args ...interface{}) Result {
	return Result{Outcome: Rejected, Reason: fmt.Sprintf(format, args...)}
}

func (s *SQLStore) UpsertPortfolio(ctx context.Context, p models.Portfolio) (Result, error) {
	if p.ID == "" {
		return rejected("portfolio id is empty"), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `INSERT INTO portfolios (id) VALUES (?)`, p.ID)
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Accepted}, nil
}

func (s *SQLStore) UpsertSecurity(ctx context.Context, sec models.Security) (Result, error) {
	if sec.ISIN == "" {
		return rejected("security isin is empty"), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO securities (isin, name, ticker, kind) VALUES (?, ?, ?, ?)`,
		sec.ISIN, sec.Name, sec.Ticker, string(sec.Kind))
	if err == nil {
		return Result{Outcome: Accepted}, nil
	}
	result, hardErr := classify(err)
	if hardErr != nil || result.Outcome != Duplicate {
		return result, hardErr
	}

	// The security already exists: fill in missing metadata, never overwrite
	// a populated name, ticker or kind.
	_, err = s.db.ExecContext(ctx, `
		UPDATE securities SET
			name   = CASE WHEN name IS NULL OR name = '' THEN ? ELSE name END,
			ticker = CASE WHEN ticker IS NULL OR ticker = '' THEN ? ELSE ticker END,
			kind   = CASE WHEN kind = '' THEN ? ELSE kind END
		WHERE isin = ?`,
		sec.Name, sec.Ticker, string(sec.Kind), sec.ISIN)
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Duplicate}, nil
}

func (s *SQLStore) UpsertTransaction(ctx context.Context, t models.Transaction) (Result, error) {
	switch {
	case t.Portfolio == "":
		return rejected("transaction %s: portfolio is empty", t.ID), nil
	case t.ID == "":
		return rejected("transaction in portfolio %s: id is empty", t.Portfolio), nil
	case t.ISIN == "":
		return rejected("transaction %s/%s: isin is empty", t.Portfolio, t.ID), nil
	case t.Count == 0:
		return rejected("transaction %s/%s: count is zero", t.Portfolio, t.ID), nil
	case t.Timestamp.IsZero():
		return rejected("transaction %s/%s: timestamp is zero", t.Portfolio, t.ID), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (portfolio, id, isin, timestamp, count) VALUES (?, ?, ?, ?, ?)`,
		t.Portfolio, t.ID, t.ISIN, t.Timestamp.UTC().Format(timestampLayout), t.Count)
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Accepted}, nil
}

func (s *SQLStore) UpsertTransactionCashFlow(ctx context.Context, f models.TransactionCashFlow) (Result, error) {
	switch {
	case f.Portfolio == "" || f.TransactionID == "":
		return rejected("cash flow %s: incomplete transaction key", f.Kind), nil
	case f.Kind == "":
		return rejected("cash flow for %s/%s: kind is empty", f.Portfolio, f.TransactionID), nil
	case f.Value.IsZero():
		return rejected("cash flow %s for %s/%s: zero values are not stored", f.Kind, f.Portfolio, f.TransactionID), nil
	case f.Currency == "":
		return rejected("cash flow %s for %s/%s: currency is empty", f.Kind, f.Portfolio, f.TransactionID), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_cash_flows (portfolio, transaction_id, kind, value, currency) VALUES (?, ?, ?, ?, ?)`,
		f.Portfolio, f.TransactionID, string(f.Kind), f.Value.String(), f.Currency)
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Accepted}, nil
}

func (s *SQLStore) UpsertEventCashFlow(ctx context.Context, e models.EventCashFlow) (Result, error) {
	switch {
	case e.Portfolio == "":
		return rejected("event %s: portfolio is empty", e.Kind), nil
	case e.Kind == "":
		return rejected("event in portfolio %s: kind is empty", e.Portfolio), nil
	case e.Timestamp.IsZero():
		return rejected("event %s in portfolio %s: timestamp is zero", e.Kind, e.Portfolio), nil
	case e.Value.IsZero():
		return rejected("event %s in portfolio %s: zero values are not stored", e.Kind, e.Portfolio), nil
	case e.Currency == "":
		return rejected("event %s in portfolio %s: currency is empty", e.Kind, e.Portfolio), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_cash_flows (portfolio, isin, kind, timestamp, count, value, currency) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Portfolio, e.ISIN, string(e.Kind), e.Timestamp.UTC().Format(timestampLayout), e.Count, e.Value.String(), e.Currency)
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Accepted}, nil
}

func (s *SQLStore) UpsertExchangeRate(ctx context.Context, r models.ExchangeRate) (Result, error) {
	switch {
	case r.CurrencyPair == "":
		return rejected("exchange rate: currency pair is empty"), nil
	case r.Date == "":
		return rejected("exchange rate %s: date is empty", r.CurrencyPair), nil
	case r.Rate.IsZero() || r.Rate.IsNegative():
		return rejected("exchange rate %s on %s: rate must be positive", r.CurrencyPair, r.Date), nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchange_rates (currency_pair, date, rate) VALUES (?, ?, ?)`,
		r.CurrencyPair, r.Date, r.Rate.String())
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Accepted}, nil
}

func (s *SQLStore) TransactionExists(ctx context.Context, portfolio, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE portfolio = ? AND id = ?`, portfolio, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, s.hard(err)
	}
	return true, nil
}

func (s *SQLStore) FindTransaction(ctx context.Context, portfolio, id string) (models.Transaction, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var t models.Transaction
	var ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT portfolio, id, isin, timestamp, count FROM transactions WHERE portfolio = ? AND id = ?`,
		portfolio, id).Scan(&t.Portfolio, &t.ID, &t.ISIN, &ts, &t.Count)
	if err == sql.ErrNoRows {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, s.hard(err)
	}
	t.Timestamp, err = time.Parse(timestampLayout, ts)
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("corrupt timestamp for transaction %s/%s: %w", portfolio, id, err)
	}
	return t, true, nil
}

func (s *SQLStore) FindTransactionCashFlows(ctx context.Context, portfolio, id string) ([]models.TransactionCashFlow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT portfolio, transaction_id, kind, value, currency FROM transaction_cash_flows
		 WHERE portfolio = ? AND transaction_id = ? ORDER BY kind`, portfolio, id)
	if err != nil {
		return nil, s.hard(err)
	}
	defer rows.Close()

	var flows []models.TransactionCashFlow
	for rows.Next() {
		var f models.TransactionCashFlow
		var kind, value string
		if err := rows.Scan(&f.Portfolio, &f.TransactionID, &kind, &value, &f.Currency); err != nil {
			return nil, s.hard(err)
		}
		f.Kind = models.CashFlowKind(kind)
		f.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt value for cash flow %s of %s/%s: %w", kind, portfolio, id, err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

func (s *SQLStore) FindSecurity(ctx context.Context, isin string) (models.Security, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sec models.Security
	var name, ticker sql.NullString
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT isin, name, ticker, kind FROM securities WHERE isin = ?`, isin).
		Scan(&sec.ISIN, &name, &ticker, &kind)
	if err == sql.ErrNoRows {
		return models.Security{}, false, nil
	}
	if err != nil {
		return models.Security{}, false, s.hard(err)
	}
	sec.Name = name.String
	sec.Ticker = ticker.String
	sec.Kind = models.SecurityKind(kind)
	return sec, true, nil
}

func (s *SQLStore) FindExchangeRate(ctx context.Context, currencyPair, date string) (models.ExchangeRate, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var r models.ExchangeRate
	var rate string
	err := s.db.QueryRowContext(ctx,
		`SELECT currency_pair, date, rate FROM exchange_rates WHERE currency_pair = ? AND date = ?`,
		currencyPair, date).Scan(&r.CurrencyPair, &r.Date, &rate)
	if err == sql.ErrNoRows {
		return models.ExchangeRate{}, false, nil
	}
	if err != nil {
		return models.ExchangeRate{}, false, s.hard(err)
	}
	r.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return models.ExchangeRate{}, false, fmt.Errorf("corrupt rate for %s on %s: %w", currencyPair, date, err)
	}
	return r, true, nil
}

func (s *SQLStore) DeleteTransaction(ctx context.Context, portfolio, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transaction_cash_flows WHERE portfolio = ? AND transaction_id = ?`, portfolio, id); err != nil {
		return s.hard(err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE portfolio = ? AND id = ?`, portfolio, id); err != nil {
		return s.hard(err)
	}
	return nil
}

func (s *SQLStore) DeleteTransactionCashFlows(ctx context.Context, portfolio, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transaction_cash_flows WHERE portfolio = ? AND transaction_id = ?`, portfolio, id); err != nil {
		return s.hard(err)
	}
	return nil
}

// hard wraps read-path errors; reads have no rejection semantics, any
// failure is a store failure.
func (s *SQLStore) hard(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
