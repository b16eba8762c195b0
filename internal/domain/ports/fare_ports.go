package ports

import (
	"context"
	"encoding/json"

	"github.com/riverplate/ferryfare-provider/internal/domain/models"
)

// FareSearch parameterizes one pricing call: a route, a normalized date, an
// accommodation code and the tariff families to price. SailingCode narrows
// the query to a single departure when set; WithVehicle adds one car.
type FareSearch struct {
	Origin      string
	Destination string
	DateYYMMDD  string
	SeatCode    string
	Tariffs     []models.TariffType
	SailingCode string
	WithVehicle bool
}

// SailingTotal is one sailing's projection for a single tariff label.
type SailingTotal struct {
	SailingCode   string
	Amount        models.Money
	DepartureTime string
	ArrivalTime   string
	VesselName    string
	Available     bool
}

// TariffTotals maps each requested tariff label to its per-sailing totals.
// Sailings without a matching total for a label are absent from that map.
type TariffTotals map[models.TariffType]map[string]SailingTotal

// FareSource executes pricing queries against the upstream endpoint.
type FareSource interface {
	// DayTotals runs one full-day query and extracts the totals for every
	// tariff named in the search.
	DayTotals(ctx context.Context, market models.MarketContext, cred Credential, search FareSearch) (TariffTotals, error)
	// DayBundle runs the same query and returns the upstream body untouched.
	DayBundle(ctx context.Context, market models.MarketContext, cred Credential, search FareSearch) (json.RawMessage, error)
}
