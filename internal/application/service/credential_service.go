package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CredentialService produces a currently-valid upstream credential:
// operator override first, then the store, then a browser-driven capture.
// At most one capture runs per market at a time.
type CredentialService struct {
	log            *zap.Logger
	store          ports.CredentialStore
	acquirer       ports.CredentialAcquirer
	overridePrefix string
	assumedTTL     time.Duration
	acquireTimeout time.Duration

	mu          sync.Mutex
	marketLocks map[models.MarketCode]*sync.Mutex

	now func() time.Time
}

func NewCredentialService(log *zap.Logger, store ports.CredentialStore, acquirer ports.CredentialAcquirer, overridePrefix string, assumedTTL, acquireTimeout time.Duration) *CredentialService {
	if log == nil {
		log = zap.NewNop()
	}
	if overridePrefix == "" {
		overridePrefix = "FERRY_STATIC_TOKEN"
	}
	if assumedTTL <= 0 {
		assumedTTL = 10 * time.Hour
	}
	if acquireTimeout <= 0 {
		acquireTimeout = 90 * time.Second
	}

	return &CredentialService{
		log:            log,
		store:          store,
		acquirer:       acquirer,
		overridePrefix: overridePrefix,
		assumedTTL:     assumedTTL,
		acquireTimeout: acquireTimeout,
		marketLocks:    make(map[models.MarketCode]*sync.Mutex),
		now:            time.Now,
	}
}

func (s *CredentialService) EnsureValid(ctx context.Context, market models.MarketContext) (ports.Credential, error) {
	const op = "service.EnsureValid"
	tracer := otel.Tracer("ferryfare-provider/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("credential.market", string(market.Code)))

	logger := s.log.With(zap.String("op", op), zap.String("market", string(market.Code)))

	// Operator escape hatch: a static token from the environment wins
	// unconditionally.
	if tok := s.overrideToken(market.Code); tok != "" {
		span.AddEvent("credential.override")
		return ports.Credential{Token: tok}, nil
	}

	if cred, ok := s.storedCredential(ctx, logger, market.Code); ok {
		span.AddEvent("credential.cache.hit")
		return cred, nil
	}
	span.AddEvent("credential.cache.miss")

	lock := s.marketLock(market.Code)
	lock.Lock()
	defer lock.Unlock()

	// Whoever held the lock before us may have refilled the store.
	if cred, ok := s.storedCredential(ctx, logger, market.Code); ok {
		span.AddEvent("credential.cache.hit_after_wait")
		return cred, nil
	}

	// The acquisition is detached from the caller's cancellation: even if
	// this caller gives up, a captured credential still benefits the next
	// one. Its own timeout keeps it bounded.
	acqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.acquireTimeout)
	defer cancel()

	cred, err := s.acquirer.Acquire(acqCtx, market)
	if err != nil {
		logger.Error("credential acquisition failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "acquisition failed")
		if errors.Is(err, derr.ErrCredentialUnavailable) {
			return ports.Credential{}, fmt.Errorf("%s: %w", op, err)
		}
		return ports.Credential{}, fmt.Errorf("%s: %v: %w", op, err, derr.ErrCredentialUnavailable)
	}

	// The upstream never advertises a lifetime; trust an embedded exp claim
	// when the token turns out to be a JWT, else keep the guessed offset.
	if claimExp := jwtExpiry(cred.Token); !claimExp.IsZero() {
		cred.ExpiresAt = claimExp
	} else if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = s.now().Add(s.assumedTTL)
	}

	if !cred.Usable(s.now()) {
		logger.Warn("acquired credential already expired", zap.Time("expires_at", cred.ExpiresAt))
		span.SetStatus(otelcodes.Error, "acquired credential expired")
		return ports.Credential{}, fmt.Errorf("%s: %w", op, derr.ErrCredentialUnavailable)
	}

	if err := s.store.Put(ctx, market.Code, cred); err != nil {
		logger.Warn("credential store write failed", zap.Error(err))
		span.RecordError(err)
	}

	logger.Info("credential acquired", zap.Time("expires_at", cred.ExpiresAt))
	span.SetStatus(otelcodes.Ok, "ok")
	return cred, nil
}

// Status reports the market credential for operational visibility, without
// triggering an acquisition.
func (s *CredentialService) Status(ctx context.Context, market models.MarketContext) (ports.CredentialStatus, error) {
	if tok := s.overrideToken(market.Code); tok != "" {
		return ports.CredentialStatus{
			Present:   true,
			Masked:    maskToken(tok),
			Valid:     true,
			ExpiresAt: jwtExpiry(tok),
		}, nil
	}

	cred, err := s.store.Get(ctx, market.Code)
	if err != nil {
		if errors.Is(err, derr.ErrCredentialNotFound) {
			return ports.CredentialStatus{}, nil
		}
		return ports.CredentialStatus{}, err
	}

	return ports.CredentialStatus{
		Present:   true,
		Masked:    maskToken(cred.Token),
		Valid:     cred.Usable(s.now()),
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

func (s *CredentialService) storedCredential(ctx context.Context, logger *zap.Logger, market models.MarketCode) (ports.Credential, bool) {
	cred, err := s.store.Get(ctx, market)
	if err != nil {
		if !errors.Is(err, derr.ErrCredentialNotFound) {
			logger.Warn("credential store read failed", zap.Error(err))
		}
		return ports.Credential{}, false
	}
	if !cred.Usable(s.now()) {
		return ports.Credential{}, false
	}
	return cred, true
}

func (s *CredentialService) overrideToken(market models.MarketCode) string {
	key := fmt.Sprintf("%s_%s", s.overridePrefix, strings.ToUpper(string(market)))
	return strings.TrimSpace(os.Getenv(key))
}

func (s *CredentialService) marketLock(market models.MarketCode) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.marketLocks[market]
	if !ok {
		lock = &sync.Mutex{}
		s.marketLocks[market] = lock
	}
	return lock
}

// jwtExpiry decodes the exp claim of a JWT-shaped token without verifying
// the signature (we hold no key for the upstream's tokens). Returns the zero
// time for anything that is not a JWT or carries no exp.
func jwtExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func maskToken(token string) string {
	if len(token) > 24 {
		return token[:10] + "..." + token[len(token)-10:]
	}
	return "masked"
}
