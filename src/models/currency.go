package models

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the denomination of a holding. Only USD and CAD are traded.
type Currency string

const (
	USD Currency = "USD"
	CAD Currency = "CAD"
)

// Currencies lists the supported currencies in report order.
var Currencies = []Currency{USD, CAD}

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", &UnsupportedCurrencyError{Code: code}
	}
	return c, nil
}

func (c Currency) Valid() bool {
	return c == USD || c == CAD
}

func (c Currency) String() string {
	return string(c)
}

// Region is the market the currency trades in.
func (c Currency) Region() Region {
	if c == CAD {
		return RegionCA
	}
	return RegionUS
}

// Fraction is the number of minor-unit digits of the currency.
func (c Currency) Fraction() int32 {
	cur := money.GetCurrency(string(c))
	if cur == nil {
		return 2
	}
	return int32(cur.Fraction)
}

// Format renders an amount with the currency grapheme, rounded to its minor unit.
func (c Currency) Format(amount decimal.Decimal) string {
	minor := amount.Shift(c.Fraction()).Round(0).IntPart()
	return money.New(minor, string(c)).Display()
}

// Region is the market hint passed to the price feed.
type Region string

const (
	RegionUS Region = "US"
	RegionCA Region = "CA"
)

var canadianSuffixes = []string{".TO", ".V", ".NE"}

// CanadianSuffixes are the exchange suffixes tried, in order, for CA tickers.
func CanadianSuffixes() []string {
	return append([]string(nil), canadianSuffixes...)
}

// ParseRegion defaults to US for an empty value.
func ParseRegion(s string) Region {
	if strings.EqualFold(strings.TrimSpace(s), string(RegionCA)) {
		return RegionCA
	}
	return RegionUS
}

// HasCanadianSuffix reports whether the ticker already names a Canadian exchange.
func HasCanadianSuffix(symbol string) bool {
	upper := strings.ToUpper(symbol)
	for _, suffix := range canadianSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// CurrencyFor maps a ticker and region to the currency it trades in.
func CurrencyFor(symbol string, region Region) Currency {
	if region == RegionCA || HasCanadianSuffix(symbol) {
		return CAD
	}
	return USD
}

// CanonicalSymbol upper-cases and trims a ticker.
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
