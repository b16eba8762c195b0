package mappers

import (
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"github.com/riverplate/ferryfare-provider/internal/infrastructures/buquebus/dto"
)

// ExtractTariffTotals projects one upstream response into per-sailing totals
// for a single tariff label. A sailing is included only when it carries a
// numeric total for the label; everything else is omitted, never nulled.
func ExtractTariffTotals(resp *dto.PriceAvailabilityResponse, tariff models.TariffType) map[string]ports.SailingTotal {
	out := make(map[string]ports.SailingTotal)

	for _, sailing := range resp.Sailings() {
		code := sailing.RouteDateTime.TravelRoute.SailingCode
		if code == "" {
			continue
		}

		amount := tariffTotal(sailing.TariffTotals, tariff)
		if !amount.Valid {
			continue
		}

		out[code] = ports.SailingTotal{
			SailingCode:   code,
			Amount:        amount,
			DepartureTime: models.FormatClockTime(sailing.RouteDateTime.Departure.Time),
			ArrivalTime:   models.FormatClockTime(sailing.RouteDateTime.Arrival.Time),
			VesselName:    sailing.RouteDateTime.Ship.Name,
			Available:     bool(sailing.RouteDateTime.TravelRoute.IsAvailable),
		}
	}

	return out
}

func tariffTotal(totals []dto.TariffChargesTotal, tariff models.TariffType) models.Money {
	for _, t := range totals {
		if t.QuotationBasis.Tariff.TariffType != string(tariff) {
			continue
		}
		if amount := t.ChargesTotal.ChargeTotals.TotalAmount; amount.Valid {
			return models.MoneyFromCents(amount.Cents)
		}
		return models.Money{}
	}
	return models.Money{}
}
