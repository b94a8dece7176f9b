package processors

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
)

const (
	rateCacheExpiration = 15 * time.Minute
	rateCacheCleanup    = 30 * time.Minute
)

// RateSource is the read side of the exchange rate store.
type RateSource interface {
	FindExchangeRate(ctx context.Context, currencyPair, date string) (models.ExchangeRate, bool, error)
}

// ExchangeRateService answers "what was pair X worth on day Y" from the
// store, memoizing lookups since report generation asks for the same few
// pairs over and over.
type ExchangeRateService struct {
	source RateSource
	cache  *cache.Cache
}

func NewExchangeRateService(source RateSource) *ExchangeRateService {
	return &ExchangeRateService{
		source: source,
		cache:  cache.New(rateCacheExpiration, rateCacheCleanup),
	}
}

// Rate returns the stored rate for a currency pair like "USDRUB" on the
// given day.
func (s *ExchangeRateService) Rate(ctx context.Context, currencyPair string, date time.Time) (decimal.Decimal, error) {
	if len(currencyPair) == 6 && currencyPair[:3] == currencyPair[3:] {
		return decimal.NewFromInt(1), nil
	}
	dateStr := date.Format("2006-01-02")
	key := currencyPair + "|" + dateStr

	if cached, found := s.cache.Get(key); found {
		return cached.(decimal.Decimal), nil
	}

	rate, found, err := s.source.FindExchangeRate(ctx, currencyPair, dateStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("looking up rate %s on %s: %w", currencyPair, dateStr, err)
	}
	if !found {
		logger.L.Warn("Exchange rate not found", "currencyPair", currencyPair, "date", dateStr)
		return decimal.Zero, fmt.Errorf("exchange rate not found for %s on %s", currencyPair, dateStr)
	}

	s.cache.Set(key, rate.Rate, cache.DefaultExpiration)
	return rate.Rate, nil
}
