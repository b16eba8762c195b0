package models

// FareQuery is one caller request for a day's fares on a route.
type FareQuery struct {
	Origin      string
	Destination string
	// Date in any accepted input form; normalized once per query.
	Date string
	// SeatClass restricts the result to one class. Tourist is still queried
	// as the anchor for sailing identity.
	SeatClass SeatClass
	// Vehicle adds one car to the upstream request.
	Vehicle bool
}

// SailingQuote is one merged row of the fare table. Amounts carry the numeric
// value; Formatted carries the display string for the market currency.
type SailingQuote struct {
	SailingCode   string
	DepartureTime string
	ArrivalTime   string
	VesselName    string
	Available     bool

	Amounts   map[SeatClass]Money
	Formatted map[SeatClass]string

	// Differential is business minus tourist, present only when both are.
	Differential          Money
	DifferentialFormatted string
}

// FareTable is the ordered day result: ascending by departure time, sailings
// with an unknown departure time last. Rebuilt fresh per query.
type FareTable []SailingQuote

// TariffQuote is one row of the per-tariff day table: the scheduled and
// flexible totals the upstream quotes for a sailing in a single bundle.
type TariffQuote struct {
	SailingCode   string
	DepartureTime string
	ArrivalTime   string
	VesselName    string
	Available     bool

	Scheduled Money
	Flexible  Money

	ScheduledFormatted string
	FlexibleFormatted  string

	Differential          Money
	DifferentialFormatted string
}
