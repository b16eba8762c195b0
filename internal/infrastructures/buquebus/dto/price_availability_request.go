package dto

// Request-side shapes for POST /api/priceAvailability. Field names replicate
// the upstream's EDIFACT-flavored JSON keys bit-for-bit; nothing else accepts
// the request.

type PriceAvailabilityRequest struct {
	Token   string      `json:"token"`
	Request PriceSearch `json:"request"`
}

type PriceSearch struct {
	AgencyIdentity       AgencyIdentity         `json:"m_AGT_AgencyIdentity"`
	RouteDateTime        []RouteDateTimeRequest `json:"m_RDQ_RouteDateTimeRequest"`
	PassengerDetail      []PassengerDetail      `json:"c_PAQ_PassengerDetailRequest"`
	AccommodationDetails []AccommodationDetails `json:"c_ACQ_AccomodationDetailsRequest"`
	VehicleRequest       []VehicleRequest       `json:"c_VEQ_VehicleRequest"`
	MultipleTariffType   []MultipleTariffType   `json:"c_MTT_MultipleTariffTypeRequest"`
}

type AgencyIdentity struct {
	AccountNumber AgentsAccountNumber    `json:"m_AGAC_AgentsAccountNumber"`
	Currency      CurrencyForTransaction `json:"c_CURR_CurrencyForTransaction"`
	Company       Company                `json:"c_CMPNY_Company"`
	SalesChannel  SalesChannel           `json:"c_SCHN_SalesChannel"`
}

type AgentsAccountNumber struct {
	AccountNumber string `json:"m_AGAC_AgentAccountNumber"`
}

type CurrencyForTransaction struct {
	CurrencyCoded    string `json:"m_6345_CurrencyCoded"`
	DecimalPrecision string `json:"c_U428_DecimalPrecision"`
}

type Company struct {
	TradingUnitName          string `json:"m_C045_TradingUnitName"`
	CompanyName              string `json:"m_C046_CompanyName"`
	GeographicalLocationName string `json:"m_C047_GeographycalLocationName"`
	DivisionName             string `json:"m_C048_DivisionName"`
}

type SalesChannel struct {
	SalesChannel string `json:"m_C056_SalesChannel"`
}

type LegOrSector struct {
	LegOrSectorOfJourney string `json:"m_LEGJ_LegOrSectorOfJourney"`
}

type RouteDateTimeRequest struct {
	Index           string           `json:"index"`
	LegOrSector     LegOrSector      `json:"m_LEGJ_LegOrSectorOfJourney"`
	TravelRoute     TravelRouteQuery `json:"m_ROUT_TravelRoute"`
	DepartureFrom   DepartureWindow  `json:"m_DPDT_DepartureDateTime"`
	DepartureFromTo DepartureWindow  `json:"c_DPDT_DepartureDateTimeTo"`
}

type TravelRouteQuery struct {
	DeparturePort        string `json:"m_U271_ServiceAgreementDeparturePort"`
	DestinationPort      string `json:"m_U272_ServiceAgreementDestinationPort"`
	SailingCode          string `json:"c_C276_SailingCode"`
	ApplyReturnFare      bool   `json:"c_C257_applyReturnFare"`
	SearchVesselTransfer string `json:"c_399_SearchVesselTransfer"`
	VesselTransferTime   int    `json:"c_400_vesselTransferTime"`
}

type DepartureWindow struct {
	Date string `json:"m_U247_StandardDepartureDate"`
	Time string `json:"m_U248_StandardDepartureTime"`
}

type PassengerDetail struct {
	Index        string         `json:"index"`
	LegOrSector  LegOrSector    `json:"m_LEGJ_LegOrSectorOfJourney"`
	PassengerSet []PassengerSet `json:"m_PAXS_PassengerSet"`
}

type PassengerSet struct {
	PassengerIndex     string `json:"passengerIndex"`
	PassengerTypeCode  string `json:"m_U257_PassengerTypeCode"`
	NumberOfPassengers int    `json:"m_U258_NumberOfPassengers"`
}

type AccommodationDetails struct {
	LegOrSector          LegOrSector          `json:"m_LEGJ_LegOrSectorOfJourney"`
	AccommodationPlaces  AccommodationPlaces  `json:"m_ACPL_AccomodationPlaces"`
	AccommodationDetails AccommodationDetail  `json:"m_ACDT_AccomodationDetails"`
	PassengerType        []PassengerTypeCount `json:"m_PAXT_PassengerType"`
}

type AccommodationPlaces struct {
	QuantityOfUnits int    `json:"m_U228_QuantityOfUnits"`
	ModeOfOccupancy string `json:"m_U229_ModeOfOccupancy"`
}

type AccommodationDetail struct {
	AccommodationCode string `json:"m_U220_ServiceAgreementDefinedAccomodationCode"`
	AccommodationType string `json:"i_U221_AccomodationType"`
}

type PassengerTypeCount struct {
	PassengerTypeCode  string `json:"m_U257_PassengerTypeCode"`
	NumberOfPassengers int    `json:"m_U258_NumberOfPassengers"`
}

type VehicleRequest struct {
	Index       string       `json:"index"`
	LegOrSector LegOrSector  `json:"m_LEGJ_LegOrSectorOfJourney"`
	VehicleSet  []VehicleSet `json:"m_VEQS_VehicleSet"`
}

type VehicleSet struct {
	VehicleIndex     string `json:"vehicleIndex"`
	VehicleTypeCode  string `json:"m_U259_VehicleTypeCode"`
	NumberOfVehicles int    `json:"m_U260_NumberOfVehicles"`
}

type MultipleTariffType struct {
	LegOrSector LegOrSector         `json:"m_LEGJ_LegOrSectorOfJourney"`
	Tariffs     []TariffDescription `json:"m_TARF_TariffCodeTypeDescription"`
}

type TariffDescription struct {
	TariffType           string `json:"c_U282_TariffType"`
	PriceDetailRequested string `json:"c_C113_PriceDetailRequested"`
}
