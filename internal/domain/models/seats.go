package models

import "strings"

// SeatClass is the cabin/seat category requested from the upstream.
type SeatClass uint8

const (
	SeatUnspecified SeatClass = iota
	SeatTourist
	SeatBusiness
	SeatFirst
	SeatEconomy
)

// TariffType is the upstream fare-family label, distinct from the seat class.
type TariffType string

const (
	TariffScheduled TariffType = "PROGRAMADA"
	TariffFlexible  TariffType = "FLEXIBLE"
	TariffEconomy   TariffType = "ECONOMICA"
)

// Code returns the upstream accommodation code for the class.
func (c SeatClass) Code() string {
	switch c {
	case SeatTourist:
		return "TSEAT"
	case SeatBusiness:
		return "BSEAT"
	case SeatFirst:
		return "PRSEAT"
	case SeatEconomy:
		return "ESEAT"
	default:
		return ""
	}
}

// Tariff returns the fare family the upstream prices the class under.
// Economy is the odd one out: it is only quoted under its own label.
func (c SeatClass) Tariff() TariffType {
	if c == SeatEconomy {
		return TariffEconomy
	}
	return TariffScheduled
}

func (c SeatClass) String() string {
	switch c {
	case SeatTourist:
		return "tourist"
	case SeatBusiness:
		return "business"
	case SeatFirst:
		return "first"
	case SeatEconomy:
		return "economy"
	default:
		return "unspecified"
	}
}

// ParseSeatClass accepts both the friendly names and the upstream
// accommodation codes.
func ParseSeatClass(s string) (SeatClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tourist", "tseat":
		return SeatTourist, true
	case "business", "bseat":
		return SeatBusiness, true
	case "first", "premium", "prseat":
		return SeatFirst, true
	case "economy", "eseat":
		return SeatEconomy, true
	default:
		return SeatUnspecified, false
	}
}

// SeatClassPrecedence is the deterministic order used when merging per-class
// results: the first class that knows a sailing's time or vessel wins.
var SeatClassPrecedence = []SeatClass{SeatTourist, SeatBusiness, SeatFirst, SeatEconomy}
