package quotes

import "github.com/shopspring/decimal"

type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta ChartMeta `json:"meta"`
}

type ChartMeta struct {
	Currency           string          `json:"currency"`
	Symbol             string          `json:"symbol"`
	ExchangeName       string          `json:"exchangeName"`
	RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
	RegularMarketTime  int64           `json:"regularMarketTime"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
