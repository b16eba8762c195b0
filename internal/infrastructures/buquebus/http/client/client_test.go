package buquebus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
)

const dayResponseBody = `{
  "sailingprice": [
    {
      "c_RDR_RouteDateTimeResponse": {
        "m_ROUT_TravelRoute": {"c_C276_SailingCode": "BQB0830", "c_C081_IsAvailable": "true"},
        "m_DPDT_DepartureDateAndTime": {"m_U248_StandardDepartureTime": "0830"},
        "c_ARDT_ArrivalDateAndTime": {"c_U239_NominalArrivalTime": "1045"},
        "c_SHNM_ShipName": {"m_SHNM_ShipName": "Francisco"}
      },
      "c_TCT_TariffChargesTotals": [
        {
          "c_QOR_QuotationBasisResponse": {"m_TARF_TariffCodeTypeDescription": {"c_U282_TariffType": "PROGRAMADA"}},
          "c_QLP_ChargesTotal": {"m_CHTO_ChargeTotals": {"m_U618_TotalAmount": "8623440"}}
        }
      ]
    }
  ]
}`

func testMarket(baseURL string) models.MarketContext {
	return models.MarketContext{
		Code:             "ar",
		BaseURL:          baseURL,
		ProductPath:      "/ar/product",
		AccountNumber:    "7250",
		Currency:         "ARS",
		DecimalPrecision: "2",
	}
}

func testSearch() ports.FareSearch {
	return ports.FareSearch{
		Origin:      "BUE",
		Destination: "COL",
		DateYYMMDD:  "250314",
		SeatCode:    "TSEAT",
		Tariffs:     []models.TariffType{models.TariffScheduled},
	}
}

func TestDayTotalsSuccess(t *testing.T) {
	var gotPath, gotReferer, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReferer = r.Header.Get("Referer")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dayResponseBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	market := testMarket(server.URL)
	cred := ports.Credential{Token: "tok-123"}

	totals, err := client.DayTotals(context.Background(), market, cred, testSearch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/priceAvailability" {
		t.Fatalf("expected POST to /api/priceAvailability, got %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
	if gotReferer != market.ProductURL() {
		t.Fatalf("expected referer %q, got %q", market.ProductURL(), gotReferer)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if payload["token"] != "tok-123" {
		t.Fatalf("expected token in request body, got %v", payload["token"])
	}

	scheduled := totals[models.TariffScheduled]
	got, ok := scheduled["BQB0830"]
	if !ok {
		t.Fatalf("expected sailing BQB0830 in totals, got %v", scheduled)
	}
	if got.Amount.Cents != 8623440 {
		t.Fatalf("expected 8623440 cents, got %d", got.Amount.Cents)
	}
	if got.DepartureTime != "08:30" {
		t.Fatalf("expected departure 08:30, got %q", got.DepartureTime)
	}
}

func TestDayTotalsUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	_, err := client.DayTotals(context.Background(), testMarket(server.URL), ports.Credential{Token: "stale"}, testSearch())
	if err == nil {
		t.Fatalf("expected error on upstream rejection")
	}

	var upstream *derr.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstream.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", upstream.StatusCode)
	}
}

func TestDayTotalsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 2*time.Second)

	_, err := client.DayTotals(context.Background(), testMarket(server.URL), ports.Credential{Token: "tok"}, testSearch())
	if !errors.Is(err, derr.ErrUpstreamTransport) {
		t.Fatalf("expected ErrUpstreamTransport, got %v", err)
	}
}

func TestDayTotalsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() is never
		// cancelled and the deferred server.Close() deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.DayTotals(ctx, testMarket(server.URL), ports.Credential{Token: "tok"}, testSearch())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
}

func TestDayBundleReturnsRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dayResponseBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	bundle, err := client.DayBundle(context.Background(), testMarket(server.URL), ports.Credential{Token: "tok"}, testSearch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(bundle) != dayResponseBody {
		t.Fatalf("expected the raw body to be passed through unchanged")
	}
}

func TestBuildDayRequestShape(t *testing.T) {
	market := testMarket("https://www.buquebus.com")
	search := testSearch()
	search.WithVehicle = true

	req := buildDayRequest(market, ports.Credential{Token: "tok"}, search)

	if req.Request.AgencyIdentity.AccountNumber.AccountNumber != "7250" {
		t.Fatalf("expected account 7250, got %q", req.Request.AgencyIdentity.AccountNumber.AccountNumber)
	}
	if req.Request.AgencyIdentity.Currency.CurrencyCoded != "ARS" {
		t.Fatalf("expected currency ARS, got %q", req.Request.AgencyIdentity.Currency.CurrencyCoded)
	}

	route := req.Request.RouteDateTime[0]
	if route.DepartureFrom.Time != "0000" || route.DepartureFromTo.Time != "2359" {
		t.Fatalf("expected full-day window, got %q..%q", route.DepartureFrom.Time, route.DepartureFromTo.Time)
	}
	if route.DepartureFrom.Date != "250314" {
		t.Fatalf("expected date 250314, got %q", route.DepartureFrom.Date)
	}

	if len(req.Request.VehicleRequest) != 1 {
		t.Fatalf("expected one vehicle request, got %d", len(req.Request.VehicleRequest))
	}
	if req.Request.VehicleRequest[0].VehicleSet[0].VehicleTypeCode != "CAR" {
		t.Fatalf("expected CAR vehicle type")
	}

	tariffs := req.Request.MultipleTariffType[0].Tariffs
	if len(tariffs) != 1 || tariffs[0].TariffType != "PROGRAMADA" {
		t.Fatalf("expected single PROGRAMADA tariff, got %v", tariffs)
	}
}
