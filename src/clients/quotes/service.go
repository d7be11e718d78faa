package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"stockbot/src/config"
	"stockbot/src/models"
	"stockbot/src/utils/requests"
)

// Oracle returns the current price of a ticker.
type Oracle interface {
	CurrentPrice(ctx context.Context, symbol string, region models.Region) (models.Quote, error)
}

// QuotesServiceClient reads prices from a Yahoo Finance compatible chart endpoint.
type QuotesServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

func NewClient(cfg *config.Config) *QuotesServiceClient {
	return &QuotesServiceClient{
		API:     requests.NewExternalAPIService(cfg.ExternalClients.Quotes.Timeout()),
		BaseURL: cfg.ExternalClients.Quotes.BaseURL,
	}
}

// CurrentPrice looks symbol up as given. In the CA region a ticker without an
// exchange suffix is tried on TSX, TSX-V and NEO in that order.
func (c *QuotesServiceClient) CurrentPrice(ctx context.Context, symbol string, region models.Region) (models.Quote, error) {
	symbol = models.CanonicalSymbol(symbol)
	if symbol == "" {
		return models.Quote{}, &models.PriceUnavailableError{Symbol: symbol, Err: &models.InvalidSymbolError{Symbol: symbol}}
	}

	candidates := []string{symbol}
	if region == models.RegionCA && !models.HasCanadianSuffix(symbol) {
		candidates = candidates[:0]
		for _, suffix := range models.CanadianSuffixes() {
			candidates = append(candidates, symbol+suffix)
		}
	}

	var lastErr error
	for _, candidate := range candidates {
		quote, err := c.fetch(ctx, candidate)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return models.Quote{}, &models.PriceUnavailableError{Symbol: symbol, Err: lastErr}
}

func (c *QuotesServiceClient) fetch(ctx context.Context, symbol string) (models.Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(symbol))

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", "1d")

	body, err := c.API.Get(ctx, endpoint, params)
	if err != nil {
		return models.Quote{}, err
	}

	var chart ChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return models.Quote{}, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return models.Quote{}, errors.New(chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return models.Quote{}, fmt.Errorf("no chart data for %s", symbol)
	}

	meta := chart.Chart.Result[0].Meta
	if !meta.RegularMarketPrice.IsPositive() {
		return models.Quote{}, fmt.Errorf("no market price for %s", symbol)
	}
	currency, err := models.ParseCurrency(meta.Currency)
	if err != nil {
		return models.Quote{}, err
	}

	fetchedAt := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		fetchedAt = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	return models.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		Currency:  currency,
		FetchedAt: fetchedAt,
	}, nil
}
