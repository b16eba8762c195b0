package buquebus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"github.com/riverplate/ferryfare-provider/internal/infrastructures/buquebus/dto"
	"github.com/riverplate/ferryfare-provider/internal/infrastructures/buquebus/mappers"
)

const (
	priceAvailabilityPath = "/api/priceAvailability"

	// Caps how much of a rejection body is carried in the error.
	maxErrorBody = 4 << 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds the pricing client. The single http.Client keeps the
// upstream connection alive across the concurrent per-class queries.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.buquebus.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) DayTotals(ctx context.Context, market models.MarketContext, cred ports.Credential, search ports.FareSearch) (ports.TariffTotals, error) {
	body, err := c.priceAvailability(ctx, market, cred, search)
	if err != nil {
		return nil, err
	}

	var payload dto.PriceAvailabilityResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode price availability: %v", derr.ErrUpstreamTransport, err)
	}

	out := make(ports.TariffTotals, len(search.Tariffs))
	for _, tariff := range search.Tariffs {
		out[tariff] = mappers.ExtractTariffTotals(&payload, tariff)
	}
	return out, nil
}

func (c *Client) DayBundle(ctx context.Context, market models.MarketContext, cred ports.Credential, search ports.FareSearch) (json.RawMessage, error) {
	body, err := c.priceAvailability(ctx, market, cred, search)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: non-JSON price availability body", derr.ErrUpstreamTransport)
	}
	return json.RawMessage(body), nil
}

func (c *Client) priceAvailability(ctx context.Context, market models.MarketContext, cred ports.Credential, search ports.FareSearch) ([]byte, error) {
	payload, err := json.Marshal(buildDayRequest(market, cred, search))
	if err != nil {
		return nil, fmt.Errorf("marshal price availability request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+priceAvailabilityPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build price availability request: %w", err)
	}

	// The upstream only answers requests that look like its own front-end.
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", market.ProductURL())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", derr.ErrUpstreamTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", derr.ErrUpstreamTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		truncated := body
		if len(truncated) > maxErrorBody {
			truncated = truncated[:maxErrorBody]
		}
		return nil, &derr.UpstreamError{StatusCode: resp.StatusCode, Body: string(truncated)}
	}

	return body, nil
}

// buildDayRequest assembles the full-day pricing payload: one adult, the
// requested accommodation, and the tariff list. Market identity (account,
// currency, product path) is data, never a type.
func buildDayRequest(market models.MarketContext, cred ports.Credential, search ports.FareSearch) dto.PriceAvailabilityRequest {
	leg := dto.LegOrSector{LegOrSectorOfJourney: "1"}

	tariffs := make([]dto.TariffDescription, 0, len(search.Tariffs))
	for _, t := range search.Tariffs {
		tariffs = append(tariffs, dto.TariffDescription{
			TariffType:           string(t),
			PriceDetailRequested: "true",
		})
	}

	vehicles := []dto.VehicleRequest{}
	if search.WithVehicle {
		vehicles = append(vehicles, dto.VehicleRequest{
			Index:       "0",
			LegOrSector: leg,
			VehicleSet: []dto.VehicleSet{{
				VehicleIndex:     "0",
				VehicleTypeCode:  "CAR",
				NumberOfVehicles: 1,
			}},
		})
	}

	return dto.PriceAvailabilityRequest{
		Token: cred.Token,
		Request: dto.PriceSearch{
			AgencyIdentity: dto.AgencyIdentity{
				AccountNumber: dto.AgentsAccountNumber{AccountNumber: market.AccountNumber},
				Currency: dto.CurrencyForTransaction{
					CurrencyCoded:    market.Currency,
					DecimalPrecision: market.DecimalPrecision,
				},
				Company: dto.Company{
					TradingUnitName:          "PAX",
					CompanyName:              "BUQUEBUS",
					GeographicalLocationName: "South America",
					DivisionName:             "BQB",
				},
				SalesChannel: dto.SalesChannel{SalesChannel: "WEB"},
			},
			RouteDateTime: []dto.RouteDateTimeRequest{{
				Index:       "0",
				LegOrSector: leg,
				TravelRoute: dto.TravelRouteQuery{
					DeparturePort:        search.Origin,
					DestinationPort:      search.Destination,
					SailingCode:          search.SailingCode,
					ApplyReturnFare:      false,
					SearchVesselTransfer: "false",
					VesselTransferTime:   0,
				},
				DepartureFrom:   dto.DepartureWindow{Date: search.DateYYMMDD, Time: "0000"},
				DepartureFromTo: dto.DepartureWindow{Date: search.DateYYMMDD, Time: "2359"},
			}},
			PassengerDetail: []dto.PassengerDetail{{
				Index:       "0",
				LegOrSector: leg,
				PassengerSet: []dto.PassengerSet{{
					PassengerIndex:     "0",
					PassengerTypeCode:  "ADL",
					NumberOfPassengers: 1,
				}},
			}},
			AccommodationDetails: []dto.AccommodationDetails{{
				LegOrSector: leg,
				AccommodationPlaces: dto.AccommodationPlaces{
					QuantityOfUnits: 1,
					ModeOfOccupancy: "C",
				},
				AccommodationDetails: dto.AccommodationDetail{
					AccommodationCode: search.SeatCode,
					AccommodationType: "CHAIR",
				},
				PassengerType: []dto.PassengerTypeCount{{
					PassengerTypeCode:  "ADL",
					NumberOfPassengers: 1,
				}},
			}},
			VehicleRequest:     vehicles,
			MultipleTariffType: []dto.MultipleTariffType{{LegOrSector: leg, Tariffs: tariffs}},
		},
	}
}
