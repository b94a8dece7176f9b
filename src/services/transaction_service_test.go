package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/investfolio/backend/src/database"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/store"
)

func newSQLBackedService(t *testing.T) *TransactionService {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "txsvc.db"))
	t.Cleanup(func() { database.DB.Close() })
	return NewTransactionService(store.NewSQLStore(database.DB, 5*time.Second))
}

func TestTransactionViewRoundTrip(t *testing.T) {
	svc := newSQLBackedService(t)
	ctx := context.Background()

	saved := &TransactionView{
		Portfolio:          "P-1",
		TransactionID:      "T-1",
		ISIN:               "RU000A0ZZ117",
		SecurityName:       "ОФЗ 26220",
		Timestamp:          "2021-07-02 14:05:00",
		Action:             processors.ActionBuy,
		Count:              10,
		Kind:               models.KindShare,
		Price:              decimal.RequireFromString("102.50"),
		PriceCurrency:      "RUB",
		AccruedInterest:    decimal.RequireFromString("1.234"),
		Commission:         decimal.RequireFromString("1.42"),
		CommissionCurrency: "RUB",
	}
	require.NoError(t, svc.Save(ctx, saved))

	got, found, err := svc.Get(ctx, "P-1", "T-1")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, processors.ActionBuy, got.Action)
	assert.Equal(t, int64(10), got.Count)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("102.50")), "unit price survives the round trip: %s", got.Price)
	assert.True(t, got.AccruedInterest.Equal(decimal.RequireFromString("1.234")))
	assert.True(t, got.Commission.Equal(decimal.RequireFromString("1.42")))
	assert.Equal(t, "ОФЗ 26220", got.SecurityName)
	// accrued interest reclassifies the instrument on both write and read
	assert.Equal(t, models.KindBond, got.Kind)
}

func TestTransactionEditReplacesFlows(t *testing.T) {
	svc := newSQLBackedService(t)
	ctx := context.Background()

	view := &TransactionView{
		Portfolio:          "P-1",
		TransactionID:      "T-1",
		ISIN:               "RU000A0JX0J2",
		Timestamp:          "2021-07-02 14:05:00",
		Action:             processors.ActionBuy,
		Count:              10,
		Price:              decimal.RequireFromString("283.45"),
		PriceCurrency:      "RUB",
		AccruedInterest:    decimal.RequireFromString("1.50"),
		Commission:         decimal.RequireFromString("1.42"),
		CommissionCurrency: "RUB",
	}
	require.NoError(t, svc.Save(ctx, view))

	// the edit drops the accrued interest; the stale flow must not survive
	view.AccruedInterest = decimal.Zero
	view.Action = processors.ActionSell
	require.NoError(t, svc.Save(ctx, view))

	got, found, err := svc.Get(ctx, "P-1", "T-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, processors.ActionSell, got.Action)
	assert.True(t, got.AccruedInterest.IsZero())
	// the securities table keeps the kind the first save established
	assert.Equal(t, models.KindBond, got.Kind)
}

func TestTransactionDerivativeView(t *testing.T) {
	svc := newSQLBackedService(t)
	ctx := context.Background()

	view := &TransactionView{
		Portfolio:         "P-1",
		TransactionID:     "D-1",
		ISIN:              "SiM1",
		Timestamp:         "2021-06-01 10:00:00",
		Action:            processors.ActionBuy,
		Count:             2,
		Kind:              models.KindDerivative,
		Price:             decimal.RequireFromString("50"), // points per contract
		PriceCurrency:     "RUB",
		TickSize:          decimal.RequireFromString("1"),
		TickValue:         decimal.RequireFromString("2"),
		TickValueCurrency: "RUB",
	}
	require.NoError(t, svc.Save(ctx, view))

	got, found, err := svc.Get(ctx, "P-1", "D-1")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, models.KindDerivative, got.Kind)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("50")))
	// the point-to-money conversion comes back as a unit tick
	assert.True(t, got.TickSize.Equal(decimal.RequireFromString("1")))
	assert.True(t, got.TickValue.Equal(decimal.RequireFromString("2")), "tick value: %s", got.TickValue)
	assert.Equal(t, "RUB", got.TickValueCurrency)
}

func TestTransactionGetMissing(t *testing.T) {
	svc := newSQLBackedService(t)

	_, found, err := svc.Get(context.Background(), "P-1", "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTransactionDelete(t *testing.T) {
	svc := newSQLBackedService(t)
	ctx := context.Background()

	view := &TransactionView{
		Portfolio:     "P-1",
		TransactionID: "T-1",
		ISIN:          "RU000A0JX0J2",
		Timestamp:     "2021-07-02 14:05:00",
		Action:        processors.ActionBuy,
		Count:         1,
		Price:         decimal.RequireFromString("283.45"),
		PriceCurrency: "RUB",
	}
	require.NoError(t, svc.Save(ctx, view))
	require.NoError(t, svc.Delete(ctx, "P-1", "T-1"))

	_, found, err := svc.Get(ctx, "P-1", "T-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTransactionSaveRejectsInvalidView(t *testing.T) {
	svc := newSQLBackedService(t)

	err := svc.Save(context.Background(), &TransactionView{
		Portfolio:     "P-1",
		TransactionID: "T-1",
		ISIN:          "RU000A0JX0J2",
		Timestamp:     "not a date",
		Action:        processors.ActionBuy,
		Count:         1,
	})
	assert.Error(t, err)

	err = svc.Save(context.Background(), &TransactionView{
		Portfolio:     "P-1",
		TransactionID: "T-2",
		ISIN:          "RU000A0JX0J2",
		Timestamp:     "2021-07-02 14:05:00",
		Action:        "HOLD",
		Count:         1,
	})
	assert.Error(t, err)
}
