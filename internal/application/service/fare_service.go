package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sailings with no resolvable departure time sort after everything else.
const unknownTimeSortKey = "99:99"

// FareService drives the concurrent per-seat-class pricing queries for a
// route/date and folds the results into one ordered fare table.
type FareService struct {
	log         *zap.Logger
	credentials ports.CredentialManager
	source      ports.FareSource
	markets     map[models.MarketCode]models.MarketContext
	concurrency int
}

func NewFareService(log *zap.Logger, credentials ports.CredentialManager, source ports.FareSource, markets []models.MarketContext, concurrency int) *FareService {
	if log == nil {
		log = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	byCode := make(map[models.MarketCode]models.MarketContext, len(markets))
	for _, m := range markets {
		byCode[m.Code] = m
	}

	return &FareService{
		log:         log,
		credentials: credentials,
		source:      source,
		markets:     byCode,
		concurrency: concurrency,
	}
}

// FetchFares returns the day's fare table for a route. The tourist query
// anchors sailing identity: its failure fails the whole request, while other
// classes degrade to absent columns.
func (s *FareService) FetchFares(ctx context.Context, marketCode models.MarketCode, q models.FareQuery) (models.FareTable, error) {
	const op = "service.FetchFares"
	tracer := otel.Tracer("ferryfare-provider/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	logger := s.log.With(
		zap.String("op", op),
		zap.String("market", string(marketCode)),
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.String("date", q.Date),
	)

	market, date, err := s.prepare(marketCode, q)
	if err != nil {
		logger.Warn("invalid query", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid query")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("fares.market", string(market.Code)),
		attribute.String("fares.route", q.Origin+"-"+q.Destination),
		attribute.String("fares.date", date),
	)

	// One credential for every branch; concurrent class queries must never
	// race to acquire it independently.
	cred, err := s.credentials.EnsureValid(ctx, market)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "credential unavailable")
		return nil, err
	}

	classes := queriedClasses(q.SeatClass)

	var mu sync.Mutex
	results := make(map[models.SeatClass]map[string]ports.SailingTotal, len(classes))
	degraded := make([]models.SeatClass, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, class := range classes {
		class := class
		g.Go(func() error {
			search := ports.FareSearch{
				Origin:      q.Origin,
				Destination: q.Destination,
				DateYYMMDD:  date,
				SeatCode:    class.Code(),
				Tariffs:     []models.TariffType{class.Tariff()},
				WithVehicle: q.Vehicle,
			}

			totals, err := s.source.DayTotals(gctx, market, cred, search)
			if err != nil {
				if class == models.SeatTourist {
					return fmt.Errorf("%s class %s: %w", op, class, err)
				}
				logger.Warn("seat class query failed, degrading",
					zap.String("seat_class", class.String()),
					zap.Error(err),
				)
				span.AddEvent("fares.class_degraded",
					trace.WithAttributes(attribute.String("fares.seat_class", class.String())),
				)
				mu.Lock()
				degraded = append(degraded, class)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			results[class] = totals[class.Tariff()]
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "primary class failed")
		return nil, err
	}

	table := mergeClassTotals(market, results)
	span.SetAttributes(
		attribute.Int("fares.sailings", len(table)),
		attribute.Int("fares.degraded_classes", len(degraded)),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("fare table built",
		zap.Int("sailings", len(table)),
		zap.Int("degraded_classes", len(degraded)),
	)
	return table, nil
}

// FetchDayTariffs prices one full-day bundle and reports the scheduled and
// flexible totals side by side per sailing.
func (s *FareService) FetchDayTariffs(ctx context.Context, marketCode models.MarketCode, q models.FareQuery) ([]models.TariffQuote, error) {
	const op = "service.FetchDayTariffs"
	tracer := otel.Tracer("ferryfare-provider/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	logger := s.log.With(
		zap.String("op", op),
		zap.String("market", string(marketCode)),
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.String("date", q.Date),
	)

	market, date, err := s.prepare(marketCode, q)
	if err != nil {
		logger.Warn("invalid query", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid query")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("fares.market", string(market.Code)),
		attribute.String("fares.date", date),
	)

	cred, err := s.credentials.EnsureValid(ctx, market)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "credential unavailable")
		return nil, err
	}

	search := ports.FareSearch{
		Origin:      q.Origin,
		Destination: q.Destination,
		DateYYMMDD:  date,
		SeatCode:    models.SeatBusiness.Code(),
		Tariffs:     []models.TariffType{models.TariffScheduled, models.TariffFlexible},
		WithVehicle: q.Vehicle,
	}

	totals, err := s.source.DayTotals(ctx, market, cred, search)
	if err != nil {
		logger.Warn("day tariff query failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "day query failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scheduled := totals[models.TariffScheduled]
	flexible := totals[models.TariffFlexible]

	codes := make(map[string]struct{}, len(scheduled)+len(flexible))
	for code := range scheduled {
		codes[code] = struct{}{}
	}
	for code := range flexible {
		codes[code] = struct{}{}
	}

	quotes := make([]models.TariffQuote, 0, len(codes))
	for code := range codes {
		sched, hasSched := scheduled[code]
		flex, hasFlex := flexible[code]

		anchor := sched
		if !hasSched {
			anchor = flex
		}

		quote := models.TariffQuote{
			SailingCode:   code,
			DepartureTime: anchor.DepartureTime,
			ArrivalTime:   anchor.ArrivalTime,
			VesselName:    anchor.VesselName,
			Available:     anchor.Available,
		}
		if hasSched {
			quote.Scheduled = sched.Amount
			quote.ScheduledFormatted = models.FormatCurrency(market.Currency, sched.Amount)
		}
		if hasFlex {
			quote.Flexible = flex.Amount
			quote.FlexibleFormatted = models.FormatCurrency(market.Currency, flex.Amount)
		}
		quote.Differential = quote.Flexible.Sub(quote.Scheduled)
		quote.DifferentialFormatted = models.FormatCurrency(market.Currency, quote.Differential)

		quotes = append(quotes, quote)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		ki, kj := sortKey(quotes[i].DepartureTime), sortKey(quotes[j].DepartureTime)
		if ki != kj {
			return ki < kj
		}
		return quotes[i].SailingCode < quotes[j].SailingCode
	})

	span.SetAttributes(attribute.Int("fares.sailings", len(quotes)))
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("tariff table built", zap.Int("sailings", len(quotes)))
	return quotes, nil
}

// FetchDayBundle returns the raw upstream response for one full-day query.
func (s *FareService) FetchDayBundle(ctx context.Context, marketCode models.MarketCode, q models.FareQuery) (json.RawMessage, error) {
	const op = "service.FetchDayBundle"
	tracer := otel.Tracer("ferryfare-provider/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	logger := s.log.With(
		zap.String("op", op),
		zap.String("market", string(marketCode)),
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.String("date", q.Date),
	)

	market, date, err := s.prepare(marketCode, q)
	if err != nil {
		logger.Warn("invalid query", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid query")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("fares.market", string(market.Code)),
		attribute.String("fares.date", date),
	)

	cred, err := s.credentials.EnsureValid(ctx, market)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "credential unavailable")
		return nil, err
	}

	search := ports.FareSearch{
		Origin:      q.Origin,
		Destination: q.Destination,
		DateYYMMDD:  date,
		SeatCode:    models.SeatBusiness.Code(),
		Tariffs:     []models.TariffType{models.TariffScheduled, models.TariffFlexible},
		WithVehicle: q.Vehicle,
	}

	bundle, err := s.source.DayBundle(ctx, market, cred, search)
	if err != nil {
		logger.Warn("day bundle query failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "day query failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	span.SetStatus(otelcodes.Ok, "ok")
	return bundle, nil
}

// CredentialStatus exposes the per-market credential state for operators.
func (s *FareService) CredentialStatus(ctx context.Context, marketCode models.MarketCode) (ports.CredentialStatus, error) {
	market, ok := s.markets[marketCode]
	if !ok {
		return ports.CredentialStatus{}, derr.ErrMarketNotFound
	}
	return s.credentials.Status(ctx, market)
}

func (s *FareService) prepare(marketCode models.MarketCode, q models.FareQuery) (models.MarketContext, string, error) {
	market, ok := s.markets[marketCode]
	if !ok {
		return models.MarketContext{}, "", derr.ErrMarketNotFound
	}

	origin := strings.ToUpper(strings.TrimSpace(q.Origin))
	destination := strings.ToUpper(strings.TrimSpace(q.Destination))
	if origin == "" || destination == "" || origin == destination {
		return models.MarketContext{}, "", derr.ErrInvalidRoute
	}

	date, err := models.NormalizeTravelDate(q.Date)
	if err != nil {
		return models.MarketContext{}, "", fmt.Errorf("%w: %v", derr.ErrInvalidDate, err)
	}

	return market, date, nil
}

// queriedClasses always includes tourist, the anchor for sailing identity.
func queriedClasses(requested models.SeatClass) []models.SeatClass {
	if requested == models.SeatUnspecified || requested == models.SeatTourist {
		return models.SeatClassPrecedence
	}
	return []models.SeatClass{models.SeatTourist, requested}
}

// mergeClassTotals joins the per-class maps by sailing code. Times and vessel
// come from the first class that knows them, in precedence order.
func mergeClassTotals(market models.MarketContext, results map[models.SeatClass]map[string]ports.SailingTotal) models.FareTable {
	codes := make(map[string]struct{})
	for _, totals := range results {
		for code := range totals {
			codes[code] = struct{}{}
		}
	}

	table := make(models.FareTable, 0, len(codes))
	for code := range codes {
		quote := models.SailingQuote{
			SailingCode: code,
			Amounts:     make(map[models.SeatClass]models.Money),
			Formatted:   make(map[models.SeatClass]string),
		}

		for _, class := range models.SeatClassPrecedence {
			total, ok := results[class][code]
			if !ok {
				continue
			}

			if quote.DepartureTime == "" {
				quote.DepartureTime = total.DepartureTime
			}
			if quote.ArrivalTime == "" {
				quote.ArrivalTime = total.ArrivalTime
			}
			if quote.VesselName == "" {
				quote.VesselName = total.VesselName
			}
			quote.Available = quote.Available || total.Available

			quote.Amounts[class] = total.Amount
			quote.Formatted[class] = models.FormatCurrency(market.Currency, total.Amount)
		}

		quote.Differential = quote.Amounts[models.SeatBusiness].Sub(quote.Amounts[models.SeatTourist])
		quote.DifferentialFormatted = models.FormatCurrency(market.Currency, quote.Differential)

		table = append(table, quote)
	}

	sort.SliceStable(table, func(i, j int) bool {
		ki, kj := sortKey(table[i].DepartureTime), sortKey(table[j].DepartureTime)
		if ki != kj {
			return ki < kj
		}
		return table[i].SailingCode < table[j].SailingCode
	})

	return table
}

func sortKey(departure string) string {
	if departure == "" {
		return unknownTimeSortKey
	}
	return departure
}
