package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/models"
	"github.com/username/investfolio/backend/src/store"
	"github.com/username/investfolio/backend/src/table"
)

// Central Bank of Russia internal identifiers for the currencies we track.
var cbrCurrencyCodes = map[string]string{
	"USD": "R01235",
	"EUR": "R01239",
	"GBP": "R01035",
	"CHF": "R01775",
}

var fxRateSpec = table.Spec{
	Required: []table.Column{
		table.NewColumn("date", "data"),
		table.NewColumn("rate", "curs"),
	},
}

var fxDateLayouts = []string{"02.01.2006", "01/02/2006", "2006-01-02"}

// FxRateService downloads official exchange rates as xlsx workbooks and
// stores them against RUB. Requests are throttled so a wide refresh window
// does not hammer the upstream service.
type FxRateService struct {
	store   store.Store
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewFxRateService(st store.Store, baseURL string) *FxRateService {
	return &FxRateService{
		store:   st,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		baseURL: baseURL,
	}
}

// UpdateFrom refreshes rates for every tracked currency from the given date
// up to today. Rates already stored are left untouched.
func (s *FxRateService) UpdateFrom(ctx context.Context, from time.Time) error {
	to := time.Now()
	for currency, code := range cbrCurrencyCodes {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		pair := currency + "RUB"
		accepted, err := s.refreshPair(ctx, pair, code, from, to)
		if err != nil {
			logger.L.Warn("Exchange rate refresh failed", "pair", pair, "error", err)
			continue
		}
		logger.L.Info("Exchange rates refreshed", "pair", pair, "accepted", accepted)
	}
	return nil
}

func (s *FxRateService) refreshPair(ctx context.Context, pair, code string, from, to time.Time) (int, error) {
	url := fmt.Sprintf("%s?Posted=true&mode=1&VAL_NM_RQ=%s&FromDate=%s&ToDate=%s",
		s.baseURL, code, from.Format("01/02/2006"), to.Format("01/02/2006"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return s.ingestRates(ctx, resp.Body, pair)
}

func (s *FxRateService) ingestRates(ctx context.Context, r io.Reader, pair string) (int, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening rates workbook: %w", err)
	}
	defer wb.Close()

	sheet, err := table.FirstSheet(wb)
	if err != nil {
		return 0, err
	}
	tbl, err := sheet.WholeSheet(fxRateSpec)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, row := range tbl.Rows() {
		date, err := row.Date("date", fxDateLayouts...)
		if err != nil {
			logger.L.Warn("Skipping rate row with unparseable date", "pair", pair, "row", row.Index(), "error", err)
			continue
		}
		value, err := row.Decimal("rate")
		if err != nil {
			logger.L.Warn("Skipping rate row with unparseable value", "pair", pair, "row", row.Index(), "error", err)
			continue
		}
		res, err := s.store.UpsertExchangeRate(ctx, models.ExchangeRate{
			CurrencyPair: pair,
			Date:         date.Format("2006-01-02"),
			Rate:         value,
		})
		if err != nil {
			return accepted, err
		}
		switch res.Outcome {
		case store.Accepted:
			accepted++
		case store.Duplicate:
			// Already known; nothing to do.
		case store.Rejected:
			logger.L.Warn("Exchange rate rejected by store", "pair", pair, "reason", res.Reason)
		}
	}
	return accepted, nil
}
