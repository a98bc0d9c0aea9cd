package auth

import (
	"context"
	"time"
)

// Credential is an issued bearer token. Values are never mutated once
// published; a refresh installs a new Credential.
type Credential struct {
	Value      string
	ObtainedAt time.Time
	ExpiresAt  time.Time
}

// Remaining reports how long the credential stays valid after now.
func (c Credential) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// UsableAt reports whether at least margin of lifetime is left at now.
func (c Credential) UsableAt(now time.Time, margin time.Duration) bool {
	return c.Value != "" && c.Remaining(now) >= margin
}

// Grant is what an Issuer hands back: the raw value plus its lifetime.
type Grant struct {
	Value    string
	Lifetime time.Duration
}

// Issuer obtains a brand new credential from the platform.
type Issuer interface {
	Issue(ctx context.Context) (Grant, error)
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context) (Grant, error)

func (f IssuerFunc) Issue(ctx context.Context) (Grant, error) {
	return f(ctx)
}

// Source is consumed by callers that need a credential and can report its
// rejection by the platform. ForceRefresh takes the credential that was
// rejected; a zero Credential means none was obtained.
type Source interface {
	Credential(ctx context.Context) (Credential, error)
	ForceRefresh(ctx context.Context, rejected Credential) (Credential, error)
}
