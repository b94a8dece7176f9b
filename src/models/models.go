package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityKind classifies an instrument. The empty string means "not yet known";
// ingestion may fill it in later but never overwrites a populated value.
type SecurityKind string

const (
	KindUnknown      SecurityKind = ""
	KindShare        SecurityKind = "SHARE"
	KindBond         SecurityKind = "BOND"
	KindDerivative   SecurityKind = "DERIVATIVE"
	KindCurrencyPair SecurityKind = "CURRENCY_PAIR"
)

// CashFlowKind identifies a sub-flow of a single transaction.
// Each kind occurs at most once per transaction.
type CashFlowKind string

const (
	FlowPrice           CashFlowKind = "PRICE"
	FlowAccruedInterest CashFlowKind = "ACCRUED_INTEREST"
	FlowCommission      CashFlowKind = "COMMISSION"
	FlowDerivativeQuote CashFlowKind = "DERIVATIVE_QUOTE" // quoted value in index points
	FlowDerivativePrice CashFlowKind = "DERIVATIVE_PRICE" // quote converted to money via tick value
)

// EventKind identifies a non-transactional cash event.
type EventKind string

const (
	EventCash             EventKind = "CASH" // deposit or withdrawal
	EventDividend         EventKind = "DIVIDEND"
	EventCoupon           EventKind = "COUPON"
	EventAmortization     EventKind = "AMORTIZATION"
	EventRedemption       EventKind = "REDEMPTION"
	EventDerivativeProfit EventKind = "DERIVATIVE_PROFIT" // daily variation margin
	EventTax              EventKind = "TAX"
)

// Security is identified by an ISIN-like instrument id. Name, ticker and kind
// are optional metadata filled in as statements reveal them.
type Security struct {
	ISIN   string       `json:"isin"`
	Name   string       `json:"name,omitempty"`
	Ticker string       `json:"ticker,omitempty"`
	Kind   SecurityKind `json:"kind,omitempty"`
}

// Portfolio is a broker account, created lazily on first reference.
type Portfolio struct {
	ID string `json:"id"`
}

// Transaction is a trade keyed by (portfolio, broker transaction id).
// Count is signed: positive for a buy, negative for a sell.
type Transaction struct {
	Portfolio string    `json:"portfolio"`
	ID        string    `json:"id"`
	ISIN      string    `json:"isin"`
	Timestamp time.Time `json:"timestamp"`
	Count     int64     `json:"count"`
}

// TransactionCashFlow is one monetary sub-flow of a transaction, keyed by
// (portfolio, transaction id, kind). Zero-valued flows are never stored.
type TransactionCashFlow struct {
	Portfolio     string          `json:"portfolio"`
	TransactionID string          `json:"transaction_id"`
	Kind          CashFlowKind    `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	Currency      string          `json:"currency"`
}

// EventCashFlow is a cash event tied to a security and/or portfolio
// (dividend, coupon, amortization, deposit, withdrawal).
type EventCashFlow struct {
	Portfolio string          `json:"portfolio"`
	ISIN      string          `json:"isin,omitempty"` // empty for pure cash movements
	Kind      EventKind       `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Count     int64           `json:"count,omitempty"` // e.g. number of coupon-bearing units
	Value     decimal.Decimal `json:"value"`
	Currency  string          `json:"currency"`
}

// ExchangeRate holds one quotation of a currency pair for a day.
// At most one rate exists per (pair, date).
type ExchangeRate struct {
	CurrencyPair string          `json:"currency_pair"` // e.g. "USDRUB"
	Date         string          `json:"date"`          // YYYY-MM-DD
	Rate         decimal.Decimal `json:"rate"`
}
