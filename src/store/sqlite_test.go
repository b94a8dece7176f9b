package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/investfolio/backend/src/database"
	"github.com/username/investfolio/backend/src/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "store.db"))
	t.Cleanup(func() { database.DB.Close() })
	return NewSQLStore(database.DB, 5*time.Second)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleTransaction() models.Transaction {
	return models.Transaction{
		Portfolio: "P-1",
		ID:        "T-1",
		ISIN:      "RU000A0JX0J2",
		Timestamp: time.Date(2021, 7, 2, 14, 5, 0, 0, time.UTC),
		Count:     10,
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	upserts := []func() (Result, error){
		func() (Result, error) { return st.UpsertPortfolio(ctx, models.Portfolio{ID: "P-1"}) },
		func() (Result, error) {
			return st.UpsertSecurity(ctx, models.Security{ISIN: "RU000A0JX0J2", Name: "Газпром", Kind: models.KindShare})
		},
		func() (Result, error) { return st.UpsertTransaction(ctx, sampleTransaction()) },
		func() (Result, error) {
			return st.UpsertTransactionCashFlow(ctx, models.TransactionCashFlow{
				Portfolio: "P-1", TransactionID: "T-1", Kind: models.FlowPrice,
				Value: dec("-2834.50"), Currency: "RUB",
			})
		},
		func() (Result, error) {
			return st.UpsertEventCashFlow(ctx, models.EventCashFlow{
				Portfolio: "P-1", ISIN: "RU000A0JX0J2", Kind: models.EventDividend,
				Timestamp: time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC),
				Count:     10, Value: dec("120.50"), Currency: "RUB",
			})
		},
		func() (Result, error) {
			return st.UpsertExchangeRate(ctx, models.ExchangeRate{
				CurrencyPair: "USDRUB", Date: "2021-07-01", Rate: dec("72.2806"),
			})
		},
	}

	for i, upsert := range upserts {
		res, err := upsert()
		require.NoError(t, err)
		assert.Equal(t, Accepted, res.Outcome, "first upsert %d", i)
	}
	// replaying the same statement produces only duplicates
	for i, upsert := range upserts {
		res, err := upsert()
		require.NoError(t, err)
		assert.Equal(t, Duplicate, res.Outcome, "second upsert %d", i)
	}
}

func TestUpsertSecurityFillsMissingMetadata(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// a trade row knows only the isin
	_, err := st.UpsertSecurity(ctx, models.Security{ISIN: "RU000A0JX0J2"})
	require.NoError(t, err)

	// the securities table later supplies the name and kind
	res, err := st.UpsertSecurity(ctx, models.Security{
		ISIN: "RU000A0JX0J2", Name: "Газпром", Ticker: "GAZP", Kind: models.KindShare,
	})
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res.Outcome)

	sec, found, err := st.FindSecurity(ctx, "RU000A0JX0J2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Газпром", sec.Name)
	assert.Equal(t, "GAZP", sec.Ticker)
	assert.Equal(t, models.KindShare, sec.Kind)

	// populated fields are never overwritten
	_, err = st.UpsertSecurity(ctx, models.Security{ISIN: "RU000A0JX0J2", Name: "Другое имя", Kind: models.KindBond})
	require.NoError(t, err)
	sec, _, err = st.FindSecurity(ctx, "RU000A0JX0J2")
	require.NoError(t, err)
	assert.Equal(t, "Газпром", sec.Name)
	assert.Equal(t, models.KindShare, sec.Kind)
}

func TestUpsertRejectsInvalidRecords(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	res, err := st.UpsertPortfolio(ctx, models.Portfolio{})
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
	assert.NotEmpty(t, res.Reason)

	res, err = st.UpsertSecurity(ctx, models.Security{Name: "без isin"})
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)

	tx := sampleTransaction()
	tx.Count = 0
	res, err = st.UpsertTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)

	res, err = st.UpsertTransactionCashFlow(ctx, models.TransactionCashFlow{
		Portfolio: "P-1", TransactionID: "T-1", Kind: models.FlowPrice,
		Value: decimal.Zero, Currency: "RUB",
	})
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)

	res, err = st.UpsertExchangeRate(ctx, models.ExchangeRate{
		CurrencyPair: "USDRUB", Date: "2021-07-01", Rate: dec("-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
}

func TestEventUniquenessDistinguishesValues(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	event := models.EventCashFlow{
		Portfolio: "P-1", ISIN: "RU000A0ZZ117", Kind: models.EventCoupon,
		Timestamp: time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC),
		Count:     5, Value: dec("34.90"), Currency: "RUB",
	}
	res, err := st.UpsertEventCashFlow(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, Accepted, res.Outcome)

	// same key fields but a different amount is a distinct payout
	event.Value = dec("17.45")
	res, err = st.UpsertEventCashFlow(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, Accepted, res.Outcome)
}

func TestFindTransactionRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tx := sampleTransaction()
	_, err := st.UpsertTransaction(ctx, tx)
	require.NoError(t, err)
	_, err = st.UpsertTransactionCashFlow(ctx, models.TransactionCashFlow{
		Portfolio: "P-1", TransactionID: "T-1", Kind: models.FlowPrice,
		Value: dec("-2834.50"), Currency: "RUB",
	})
	require.NoError(t, err)

	got, found, err := st.FindTransaction(ctx, "P-1", "T-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, tx.ISIN, got.ISIN)
	assert.Equal(t, tx.Count, got.Count)
	assert.True(t, tx.Timestamp.Equal(got.Timestamp))

	flows, err := st.FindTransactionCashFlows(ctx, "P-1", "T-1")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, models.FlowPrice, flows[0].Kind)
	assert.True(t, flows[0].Value.Equal(dec("-2834.50")))

	_, found, err = st.FindTransaction(ctx, "P-1", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := st.TransactionExists(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteTransactionRemovesFlows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertTransaction(ctx, sampleTransaction())
	require.NoError(t, err)
	_, err = st.UpsertTransactionCashFlow(ctx, models.TransactionCashFlow{
		Portfolio: "P-1", TransactionID: "T-1", Kind: models.FlowPrice,
		Value: dec("-2834.50"), Currency: "RUB",
	})
	require.NoError(t, err)

	require.NoError(t, st.DeleteTransaction(ctx, "P-1", "T-1"))

	exists, err := st.TransactionExists(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.False(t, exists)
	flows, err := st.FindTransactionCashFlows(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestClassifyDriverErrors(t *testing.T) {
	_, err := classify(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = classify(errors.New("database is locked (5) (SQLITE_BUSY)"))
	assert.ErrorIs(t, err, ErrUnavailable, "lock contention must abort, not reject")

	res, err := classify(errors.New("UNIQUE constraint failed: portfolios.id"))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res.Outcome)

	res, err = classify(errors.New("NOT NULL constraint failed: transactions.isin"))
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
	assert.NotEmpty(t, res.Reason)
}

func TestTransactionExists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	exists, err := st.TransactionExists(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = st.UpsertTransaction(ctx, sampleTransaction())
	require.NoError(t, err)

	exists, err = st.TransactionExists(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindExchangeRate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertExchangeRate(ctx, models.ExchangeRate{
		CurrencyPair: "USDRUB", Date: "2021-07-01", Rate: dec("72.2806"),
	})
	require.NoError(t, err)

	rate, found, err := st.FindExchangeRate(ctx, "USDRUB", "2021-07-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rate.Rate.Equal(dec("72.2806")))

	_, found, err = st.FindExchangeRate(ctx, "EURRUB", "2021-07-01")
	require.NoError(t, err)
	assert.False(t, found)
}
