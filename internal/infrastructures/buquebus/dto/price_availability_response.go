package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Response-side shapes for /api/priceAvailability. The upstream's JSON is
// undocumented and drifts; every field decodes leniently so a missing or
// malformed node degrades to its zero value instead of failing the response.

type PriceAvailabilityResponse struct {
	// Some upstream deployments wrap the payload in a "data" envelope.
	Data         *PriceAvailabilityResponse `json:"data,omitempty"`
	SailingPrice []SailingPrice             `json:"sailingprice"`
}

// Sailings returns the per-sailing entries regardless of envelope nesting.
func (r *PriceAvailabilityResponse) Sailings() []SailingPrice {
	if r == nil {
		return nil
	}
	if len(r.SailingPrice) > 0 {
		return r.SailingPrice
	}
	if r.Data != nil {
		return r.Data.SailingPrice
	}
	return nil
}

type SailingPrice struct {
	RouteDateTime TariffRouteDateTime  `json:"c_RDR_RouteDateTimeResponse"`
	TariffTotals  []TariffChargesTotal `json:"c_TCT_TariffChargesTotals"`
}

type TariffRouteDateTime struct {
	TravelRoute TravelRouteResult    `json:"m_ROUT_TravelRoute"`
	Departure   DepartureDateAndTime `json:"m_DPDT_DepartureDateAndTime"`
	Arrival     ArrivalDateAndTime   `json:"c_ARDT_ArrivalDateAndTime"`
	Ship        ShipName             `json:"c_SHNM_ShipName"`
}

type TravelRouteResult struct {
	SailingCode string    `json:"c_C276_SailingCode"`
	IsAvailable LooseBool `json:"c_C081_IsAvailable"`
}

type DepartureDateAndTime struct {
	Time string `json:"m_U248_StandardDepartureTime"`
}

type ArrivalDateAndTime struct {
	Time string `json:"c_U239_NominalArrivalTime"`
}

type ShipName struct {
	Name string `json:"m_SHNM_ShipName"`
}

type TariffChargesTotal struct {
	QuotationBasis QuotationBasisResponse `json:"c_QOR_QuotationBasisResponse"`
	ChargesTotal   ChargesTotal           `json:"c_QLP_ChargesTotal"`
}

type QuotationBasisResponse struct {
	Tariff TariffCodeType `json:"m_TARF_TariffCodeTypeDescription"`
}

type TariffCodeType struct {
	TariffType string `json:"c_U282_TariffType"`
}

type ChargesTotal struct {
	ChargeTotals ChargeTotals `json:"m_CHTO_ChargeTotals"`
}

type ChargeTotals struct {
	TotalAmount CentsAmount `json:"m_U618_TotalAmount"`
}

// CentsAmount is an integer-cents total that arrives as a number, a digit
// string, the literal "N/A", or not at all. Anything non-numeric decodes to
// the absent amount.
type CentsAmount struct {
	Cents int64
	Valid bool
}

func (a *CentsAmount) UnmarshalJSON(data []byte) error {
	*a = CentsAmount{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(trimmed)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return nil
	}

	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Numeric totals occasionally arrive with a float exponent-free
		// fraction; treat anything that is not a plain integer as absent.
		return nil
	}

	a.Cents = cents
	a.Valid = true
	return nil
}

// LooseBool decodes true/false, "true"/"false" and 0/1 without erroring on
// anything else.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	*b = false

	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "true", `"true"`, "1", `"1"`:
		*b = true
	}
	return nil
}
