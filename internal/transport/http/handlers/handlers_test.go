package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"go.uber.org/zap"
)

type fakeFareService struct {
	table  models.FareTable
	quotes []models.TariffQuote
	bundle json.RawMessage
	status ports.CredentialStatus
	err    error

	lastMarket models.MarketCode
	lastQuery  models.FareQuery
}

func (f *fakeFareService) FetchFares(_ context.Context, market models.MarketCode, q models.FareQuery) (models.FareTable, error) {
	f.lastMarket, f.lastQuery = market, q
	return f.table, f.err
}

func (f *fakeFareService) FetchDayTariffs(_ context.Context, market models.MarketCode, q models.FareQuery) ([]models.TariffQuote, error) {
	f.lastMarket, f.lastQuery = market, q
	return f.quotes, f.err
}

func (f *fakeFareService) FetchDayBundle(_ context.Context, market models.MarketCode, q models.FareQuery) (json.RawMessage, error) {
	f.lastMarket, f.lastQuery = market, q
	return f.bundle, f.err
}

func (f *fakeFareService) CredentialStatus(_ context.Context, market models.MarketCode) (ports.CredentialStatus, error) {
	f.lastMarket = market
	return f.status, f.err
}

func newTestMux(service *fakeFareService) *http.ServeMux {
	log := zap.NewNop()
	mux := http.NewServeMux()
	Register(mux, log, NewFaresHandler(log, service), NewCredentialsHandler(log, service))
	return mux
}

func postFares(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestFaresEndpoint(t *testing.T) {
	service := &fakeFareService{
		table: models.FareTable{
			{
				SailingCode:   "S1",
				DepartureTime: "08:30",
				VesselName:    "Francisco",
				Available:     true,
				Amounts: map[models.SeatClass]models.Money{
					models.SeatTourist:  models.MoneyFromCents(8623440),
					models.SeatBusiness: models.MoneyFromCents(9123440),
				},
				Formatted: map[models.SeatClass]string{
					models.SeatTourist:  "ARS 86.234,40",
					models.SeatBusiness: "ARS 91.234,40",
				},
				Differential:          models.MoneyFromCents(500000),
				DifferentialFormatted: "ARS 5.000,00",
			},
		},
	}
	mux := newTestMux(service)

	rec := postFares(t, mux, "/v1/fares", `{"market":"ar","origin":"BUE","destination":"COL","date":"2025-03-14"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Market   string `json:"market"`
		Sailings []struct {
			SailingCode           string   `json:"sailingCode"`
			Departure             string   `json:"departure"`
			Tourist               *float64 `json:"tourist"`
			Business              *float64 `json:"business"`
			First                 *float64 `json:"first"`
			DifferentialFormatted string   `json:"differentialFormatted"`
		} `json:"sailings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Market != "ar" {
		t.Fatalf("expected market ar, got %q", resp.Market)
	}
	if len(resp.Sailings) != 1 {
		t.Fatalf("expected 1 sailing, got %d", len(resp.Sailings))
	}
	sailing := resp.Sailings[0]
	if sailing.SailingCode != "S1" || sailing.Departure != "08:30" {
		t.Fatalf("unexpected sailing: %+v", sailing)
	}
	if sailing.Tourist == nil || *sailing.Tourist != 86234.40 {
		t.Fatalf("expected tourist 86234.40, got %v", sailing.Tourist)
	}
	if sailing.First != nil {
		t.Fatalf("absent class must be omitted, got %v", *sailing.First)
	}
	if sailing.DifferentialFormatted != "ARS 5.000,00" {
		t.Fatalf("expected differential ARS 5.000,00, got %q", sailing.DifferentialFormatted)
	}
}

func TestFaresDefaultsMarket(t *testing.T) {
	service := &fakeFareService{}
	mux := newTestMux(service)

	rec := postFares(t, mux, "/v1/fares", `{"origin":"BUE","destination":"COL","date":"250314"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if service.lastMarket != "ar" {
		t.Fatalf("expected market to default to ar, got %q", service.lastMarket)
	}
}

func TestFaresEchoesNormalizedDate(t *testing.T) {
	service := &fakeFareService{}
	mux := newTestMux(service)

	for _, date := range []string{"2025-03-14", "14/03/2025", "250314"} {
		rec := postFares(t, mux, "/v1/fares", `{"origin":"BUE","destination":"COL","date":"`+date+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("date %q: expected 200, got %d", date, rec.Code)
		}

		var resp struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("date %q: failed to decode response: %v", date, err)
		}
		if resp.Date != "250314" {
			t.Fatalf("date %q: expected normalized echo 250314, got %q", date, resp.Date)
		}
	}
}

func TestFaresRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{{{`},
		{name: "missing origin", body: `{"destination":"COL","date":"250314"}`},
		{name: "missing date", body: `{"origin":"BUE","destination":"COL"}`},
		{name: "unknown seat", body: `{"origin":"BUE","destination":"COL","date":"250314","seat":"luxury"}`},
	}

	mux := newTestMux(&fakeFareService{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postFares(t, mux, "/v1/fares", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			var envelope struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("error body is not the JSON envelope: %v", err)
			}
			if envelope.Error == "" {
				t.Fatalf("expected a populated error message, got %s", rec.Body.String())
			}
		})
	}
}

func TestFaresMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeFareService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/fares", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestFaresErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "unknown market", err: derr.ErrMarketNotFound, wantCode: http.StatusNotFound},
		{name: "invalid date", err: fmt.Errorf("%w: bad input", derr.ErrInvalidDate), wantCode: http.StatusBadRequest},
		{name: "credential unavailable", err: derr.ErrCredentialUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "upstream rejection", err: &derr.UpstreamError{StatusCode: 403}, wantCode: http.StatusBadGateway},
		{name: "transport", err: derr.ErrUpstreamTransport, wantCode: http.StatusBadGateway},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: http.StatusGatewayTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(&fakeFareService{err: tc.err})

			rec := postFares(t, mux, "/v1/fares", `{"origin":"BUE","destination":"COL","date":"250314"}`)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
		})
	}
}

func TestTariffsEndpoint(t *testing.T) {
	service := &fakeFareService{
		quotes: []models.TariffQuote{
			{
				SailingCode: "S1",
				Scheduled:   models.MoneyFromCents(8623440),
				Flexible:    models.MoneyFromCents(9500000),
			},
		},
	}
	mux := newTestMux(service)

	rec := postFares(t, mux, "/v1/fares/tariffs", `{"origin":"BUE","destination":"COL","date":"250314"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []struct {
		SailingCode string   `json:"sailingCode"`
		Scheduled   *float64 `json:"scheduled"`
		Flexible    *float64 `json:"flexible"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].SailingCode != "S1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp[0].Scheduled == nil || *resp[0].Scheduled != 86234.40 {
		t.Fatalf("expected scheduled 86234.40, got %v", resp[0].Scheduled)
	}
}

func TestRawBundleEndpoint(t *testing.T) {
	raw := `{"sailingprice":[]}`
	service := &fakeFareService{bundle: json.RawMessage(raw)}
	mux := newTestMux(service)

	rec := postFares(t, mux, "/v1/fares/raw", `{"origin":"BUE","destination":"COL","date":"250314"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != raw {
		t.Fatalf("expected raw pass-through, got %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestCredentialStatusEndpoint(t *testing.T) {
	exp := time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC)
	service := &fakeFareService{
		status: ports.CredentialStatus{
			Present:   true,
			Valid:     true,
			Masked:    "eyJhbGciOi...c2lnbmVk1",
			ExpiresAt: exp,
		},
	}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/credentials/ar", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Market    string `json:"market"`
		Present   bool   `json:"present"`
		Valid     bool   `json:"valid"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expiresAt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Market != "ar" || !resp.Present || !resp.Valid {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Token != "eyJhbGciOi...c2lnbmVk1" {
		t.Fatalf("expected masked token, got %q", resp.Token)
	}
	if resp.ExpiresAt != exp.Format(time.RFC3339) {
		t.Fatalf("expected RFC3339 expiry, got %q", resp.ExpiresAt)
	}
}

func TestCredentialStatusBadPath(t *testing.T) {
	mux := newTestMux(&fakeFareService{})

	for _, path := range []string{"/v1/credentials/", "/v1/credentials/ar/extra"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("path %q: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(&fakeFareService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
