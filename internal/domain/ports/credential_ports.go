package ports

import (
	"context"
	"time"

	"github.com/riverplate/ferryfare-provider/internal/domain/models"
)

// Credential is the opaque bearer value the upstream pricing endpoint
// requires. ExpiresAt may be the zero time when the upstream gave no hint;
// such credentials are treated as valid until superseded.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Usable reports whether the credential may be handed to a caller at the
// given instant. An expired or empty credential is never usable.
func (c Credential) Usable(now time.Time) bool {
	if c.Token == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

// CredentialStore is the durable per-market token cache.
type CredentialStore interface {
	Get(ctx context.Context, market models.MarketCode) (Credential, error)
	Put(ctx context.Context, market models.MarketCode, cred Credential) error
}

// SessionStore persists the browser session snapshot (cookies) per market.
// It only speeds future acquisitions; losing it is harmless.
type SessionStore interface {
	Load(ctx context.Context, market models.MarketCode) ([]byte, error)
	Save(ctx context.Context, market models.MarketCode, snapshot []byte) error
}

// CredentialAcquirer obtains a fresh credential the hard way. Implementations
// may take seconds; callers bound them with a context.
type CredentialAcquirer interface {
	Acquire(ctx context.Context, market models.MarketContext) (Credential, error)
}

// CredentialStatus is the operator-facing view of a market's credential.
type CredentialStatus struct {
	Present   bool
	Masked    string
	Valid     bool
	ExpiresAt time.Time
}

// CredentialManager produces a currently-valid credential on demand.
type CredentialManager interface {
	EnsureValid(ctx context.Context, market models.MarketContext) (Credential, error)
	Status(ctx context.Context, market models.MarketContext) (CredentialStatus, error)
}
