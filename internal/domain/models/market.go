package models

import "strings"

// MarketCode identifies an upstream deployment variant, e.g. "ar" or "uy".
type MarketCode string

// MarketContext carries everything that differs between upstream markets.
// Instances are built once at startup and treated as read-only.
type MarketContext struct {
	Code             MarketCode
	BaseURL          string
	ProductPath      string
	AccountNumber    string
	Currency         string
	DecimalPrecision string
}

// ProductURL is the page the upstream front-end serves the booking widget
// from. It doubles as the referer for pricing calls and as the navigation
// target during credential capture.
func (m MarketContext) ProductURL() string {
	return strings.TrimRight(m.BaseURL, "/") + m.ProductPath
}

func ParseMarketCode(s string) (MarketCode, bool) {
	code := MarketCode(strings.ToLower(strings.TrimSpace(s)))
	if code == "" {
		return "", false
	}
	return code, true
}
