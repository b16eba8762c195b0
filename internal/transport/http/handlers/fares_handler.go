package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"go.uber.org/zap"
)

// FareFetcher is the slice of the application service the fares endpoints
// need.
type FareFetcher interface {
	FetchFares(ctx context.Context, market models.MarketCode, q models.FareQuery) (models.FareTable, error)
	FetchDayTariffs(ctx context.Context, market models.MarketCode, q models.FareQuery) ([]models.TariffQuote, error)
	FetchDayBundle(ctx context.Context, market models.MarketCode, q models.FareQuery) (json.RawMessage, error)
}

type FaresHandler struct {
	log     *zap.Logger
	service FareFetcher
}

func NewFaresHandler(log *zap.Logger, service FareFetcher) *FaresHandler {
	return &FaresHandler{log: log, service: service}
}

type fareRequest struct {
	Market      string `json:"market"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Seat        string `json:"seat"`
	Vehicle     bool   `json:"vehicle"`
}

type sailingResponse struct {
	SailingCode string `json:"sailingCode"`
	Departure   string `json:"departure,omitempty"`
	Arrival     string `json:"arrival,omitempty"`
	Vessel      string `json:"vessel,omitempty"`
	Available   bool   `json:"available"`

	Tourist  *float64 `json:"tourist,omitempty"`
	Business *float64 `json:"business,omitempty"`
	First    *float64 `json:"first,omitempty"`
	Economy  *float64 `json:"economy,omitempty"`

	TouristFormatted  string `json:"touristFormatted,omitempty"`
	BusinessFormatted string `json:"businessFormatted,omitempty"`
	FirstFormatted    string `json:"firstFormatted,omitempty"`
	EconomyFormatted  string `json:"economyFormatted,omitempty"`

	Differential          *float64 `json:"differential,omitempty"`
	DifferentialFormatted string   `json:"differentialFormatted,omitempty"`
}

type faresResponse struct {
	Market   string            `json:"market"`
	Origin   string            `json:"origin"`
	Dest     string            `json:"destination"`
	Date     string            `json:"date"`
	Sailings []sailingResponse `json:"sailings"`
}

func (h *FaresHandler) Fares(w http.ResponseWriter, r *http.Request) {
	market, query, ok := h.decodeFareRequest(w, r)
	if !ok {
		return
	}

	table, err := h.service.FetchFares(r.Context(), market, query)
	if err != nil {
		h.log.Warn("fetch fares failed", zap.Error(err))
		writeError(w, mapHTTPStatus(err), mapErrorMessage(err))
		return
	}

	// Echo the date in its normalized form so the three accepted input forms
	// produce identical responses.
	date := query.Date
	if normalized, err := models.NormalizeTravelDate(query.Date); err == nil {
		date = normalized
	}

	resp := faresResponse{
		Market:   string(market),
		Origin:   strings.ToUpper(query.Origin),
		Dest:     strings.ToUpper(query.Destination),
		Date:     date,
		Sailings: make([]sailingResponse, 0, len(table)),
	}
	for _, quote := range table {
		resp.Sailings = append(resp.Sailings, toSailingResponse(quote))
	}

	writeJSON(w, http.StatusOK, resp)
}

type tariffQuoteResponse struct {
	SailingCode string `json:"sailingCode"`
	Departure   string `json:"departure,omitempty"`
	Arrival     string `json:"arrival,omitempty"`
	Vessel      string `json:"vessel,omitempty"`
	Available   bool   `json:"available"`

	Scheduled *float64 `json:"scheduled,omitempty"`
	Flexible  *float64 `json:"flexible,omitempty"`

	ScheduledFormatted string `json:"scheduledFormatted,omitempty"`
	FlexibleFormatted  string `json:"flexibleFormatted,omitempty"`

	Differential          *float64 `json:"differential,omitempty"`
	DifferentialFormatted string   `json:"differentialFormatted,omitempty"`
}

func (h *FaresHandler) Tariffs(w http.ResponseWriter, r *http.Request) {
	market, query, ok := h.decodeFareRequest(w, r)
	if !ok {
		return
	}

	quotes, err := h.service.FetchDayTariffs(r.Context(), market, query)
	if err != nil {
		h.log.Warn("fetch day tariffs failed", zap.Error(err))
		writeError(w, mapHTTPStatus(err), mapErrorMessage(err))
		return
	}

	out := make([]tariffQuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, tariffQuoteResponse{
			SailingCode:           q.SailingCode,
			Departure:             q.DepartureTime,
			Arrival:               q.ArrivalTime,
			Vessel:                q.VesselName,
			Available:             q.Available,
			Scheduled:             moneyAmount(q.Scheduled),
			Flexible:              moneyAmount(q.Flexible),
			ScheduledFormatted:    q.ScheduledFormatted,
			FlexibleFormatted:     q.FlexibleFormatted,
			Differential:          moneyAmount(q.Differential),
			DifferentialFormatted: q.DifferentialFormatted,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *FaresHandler) RawBundle(w http.ResponseWriter, r *http.Request) {
	market, query, ok := h.decodeFareRequest(w, r)
	if !ok {
		return
	}

	bundle, err := h.service.FetchDayBundle(r.Context(), market, query)
	if err != nil {
		h.log.Warn("fetch raw bundle failed", zap.Error(err))
		writeError(w, mapHTTPStatus(err), mapErrorMessage(err))
		return
	}

	writeRawJSON(w, http.StatusOK, bundle)
}

func (h *FaresHandler) decodeFareRequest(w http.ResponseWriter, r *http.Request) (models.MarketCode, models.FareQuery, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return "", models.FareQuery{}, false
	}

	var req fareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", models.FareQuery{}, false
	}

	if req.Market == "" {
		req.Market = "ar"
	}
	market, ok := models.ParseMarketCode(req.Market)
	if !ok {
		writeError(w, http.StatusBadRequest, "market is required")
		return "", models.FareQuery{}, false
	}

	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		writeError(w, http.StatusBadRequest, "origin and destination are required")
		return "", models.FareQuery{}, false
	}
	if strings.TrimSpace(req.Date) == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return "", models.FareQuery{}, false
	}

	query := models.FareQuery{
		Origin:      strings.ToUpper(strings.TrimSpace(req.Origin)),
		Destination: strings.ToUpper(strings.TrimSpace(req.Destination)),
		Date:        strings.TrimSpace(req.Date),
		Vehicle:     req.Vehicle,
	}

	if strings.TrimSpace(req.Seat) != "" {
		seat, ok := models.ParseSeatClass(req.Seat)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown seat class")
			return "", models.FareQuery{}, false
		}
		query.SeatClass = seat
	}

	return market, query, true
}

func toSailingResponse(quote models.SailingQuote) sailingResponse {
	return sailingResponse{
		SailingCode:           quote.SailingCode,
		Departure:             quote.DepartureTime,
		Arrival:               quote.ArrivalTime,
		Vessel:                quote.VesselName,
		Available:             quote.Available,
		Tourist:               moneyAmount(quote.Amounts[models.SeatTourist]),
		Business:              moneyAmount(quote.Amounts[models.SeatBusiness]),
		First:                 moneyAmount(quote.Amounts[models.SeatFirst]),
		Economy:               moneyAmount(quote.Amounts[models.SeatEconomy]),
		TouristFormatted:      quote.Formatted[models.SeatTourist],
		BusinessFormatted:     quote.Formatted[models.SeatBusiness],
		FirstFormatted:        quote.Formatted[models.SeatFirst],
		EconomyFormatted:      quote.Formatted[models.SeatEconomy],
		Differential:          moneyAmount(quote.Differential),
		DifferentialFormatted: quote.DifferentialFormatted,
	}
}

func moneyAmount(m models.Money) *float64 {
	if !m.Valid {
		return nil
	}
	amount := m.Amount()
	return &amount
}
