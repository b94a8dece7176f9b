package services

import (
	"context"
	"time"
)

// StatementIngestor loads a broker statement file into the store.
type StatementIngestor interface {
	ProcessFile(ctx context.Context, path, source string) (*Summary, error)
}

// RateRefresher pulls fresh exchange rates into the store.
type RateRefresher interface {
	UpdateFrom(ctx context.Context, from time.Time) error
}
