package models

// Trade groups a transaction with its cash flows so the ingestion pipeline
// can write the flows only after the owning transaction is accepted.
type Trade struct {
	Transaction Transaction           `json:"transaction"`
	CashFlows   []TransactionCashFlow `json:"cash_flows,omitempty"`
}

// Statement is the normalized output of one broker report file. Slices are
// ordered the way the pipeline must ingest them: securities and portfolios
// before the trades and events that reference them.
type Statement struct {
	Portfolio  string          `json:"portfolio"`
	Securities []Security      `json:"securities,omitempty"`
	Trades     []Trade         `json:"trades,omitempty"`
	Events     []EventCashFlow `json:"events,omitempty"`

	// ExchangeRates holds rates some statements print alongside foreign
	// currency positions. Most sources leave this empty; rates then come
	// from the dedicated refresh service.
	ExchangeRates []ExchangeRate `json:"exchange_rates,omitempty"`

	// SkippedTables lists logical tables the parser looked for but did not
	// find or could not resolve; absence of a table is not an error.
	SkippedTables []string `json:"skipped_tables,omitempty"`
}
