package models

import (
	"fmt"
	"strings"
	"time"
)

// travelDateLayout is the 6-digit YYMMDD form every upstream date field uses.
const travelDateLayout = "060102"

// NormalizeTravelDate converts any accepted input form (YYYY-MM-DD,
// DD/MM/YYYY or YYMMDD) into the upstream's YYMMDD representation. The same
// calendar date yields the identical result regardless of input form; values
// that do not parse as real dates are rejected.
func NormalizeTravelDate(input string) (string, error) {
	s := strings.TrimSpace(input)

	var layout string
	switch {
	case strings.Contains(s, "-"):
		layout = "2006-01-02"
	case strings.Contains(s, "/"):
		layout = "02/01/2006"
	case len(s) == 6:
		layout = travelDateLayout
	default:
		return "", fmt.Errorf("unrecognized travel date %q", input)
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("parse travel date %q: %w", input, err)
	}

	return t.Format(travelDateLayout), nil
}

// FormatClockTime reformats the upstream's 4-digit 24h time code ("0830") to
// "HH:MM". Anything that is not exactly four digits yields the empty string.
func FormatClockTime(code string) string {
	if len(code) != 4 {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return code[:2] + ":" + code[2:]
}
