package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a decimal amount held as integer cents. The zero value is the
// absent amount; absence is a first-class outcome, not an error.
type Money struct {
	Cents int64
	Valid bool
}

func MoneyFromCents(cents int64) Money {
	return Money{Cents: cents, Valid: true}
}

// Amount returns the decimal value, e.g. 8623440 cents -> 86234.40.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100
}

// Sub returns m minus o, or the absent amount when either operand is absent.
func (m Money) Sub(o Money) Money {
	if !m.Valid || !o.Valid {
		return Money{}
	}
	return MoneyFromCents(m.Cents - o.Cents)
}

// ParseCents converts the upstream integer-cents representation to Money.
// The literal "N/A" sentinel and anything non-numeric convert to the absent
// amount, never to zero.
func ParseCents(v string) Money {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, "N/A") {
		return Money{}
	}
	cents, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Money{}
	}
	return MoneyFromCents(cents)
}

// FormatCurrency renders an amount the way the upstream web front-end shows
// it: currency code prefix, dot thousands grouping, comma decimals
// ("ARS 86.234,40"). Absent amounts render empty.
func FormatCurrency(currency string, m Money) string {
	if !m.Valid {
		return ""
	}

	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := strconv.FormatInt(cents/100, 10)
	frac := fmt.Sprintf("%02d", cents%100)

	var grouped strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		grouped.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(whole[i : i+3])
	}

	return fmt.Sprintf("%s %s%s,%s", currency, sign, grouped.String(), frac)
}
