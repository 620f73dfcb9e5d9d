package quotes

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// StockQuote is one symbol's current price snapshot.
type StockQuote struct {
	Symbol             string          `json:"symbol"`
	ShortName          string          `json:"shortName"`
	Currency           string          `json:"currency"`
	RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
	PreviousClose      decimal.Decimal `json:"regularMarketPreviousClose"`
}

// YahooClient fetches stock quotes from the Yahoo Finance chart endpoint.
type YahooClient struct {
	baseURL string
	client  httpDoer
}

// NewYahooClient creates a client against the public Yahoo Finance API.
func NewYahooClient() *YahooClient {
	return &YahooClient{baseURL: defaultYahooBaseURL, client: defaultClient()}
}

// chart response, trimmed to the fields the dashboard shows.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string          `json:"symbol"`
				ShortName          string          `json:"shortName"`
				Currency           string          `json:"currency"`
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
				PreviousClose      decimal.Decimal `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the current quote for symbol.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (*StockQuote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("Quote: symbol is required")
	}

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	var payload yahooChartResponse
	if err := getJSON(ctx, c.client, addr, &payload); err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("Quote: %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("Quote: no result for %q", symbol)
	}

	meta := payload.Chart.Result[0].Meta
	return &StockQuote{
		Symbol:             meta.Symbol,
		ShortName:          meta.ShortName,
		Currency:           meta.Currency,
		RegularMarketPrice: meta.RegularMarketPrice,
		PreviousClose:      meta.PreviousClose,
	}, nil
}
