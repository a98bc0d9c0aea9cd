package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	DefaultRefreshMargin  = 5 * time.Minute
	DefaultRefreshTimeout = 30 * time.Second

	flightKey = "refresh"
)

var errIssuerMissing = errors.New("auth: issuer is not configured")

// Cache hands out a shared credential and refreshes it at most once at a
// time, no matter how many goroutines ask concurrently.
type Cache struct {
	issuer  Issuer
	margin  time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  interfaces.Logger

	current atomic.Pointer[Credential]
	flight  singleflight.Group
}

var _ Source = (*Cache)(nil)

// Option customises a Cache.
type Option func(*Cache)

// WithRefreshMargin sets the minimum remaining lifetime of returned credentials.
func WithRefreshMargin(margin time.Duration) Option {
	return func(c *Cache) {
		if margin > 0 {
			c.margin = margin
		}
	}
}

// WithRefreshTimeout bounds a single issuer call.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *Cache) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for refresh events.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.Ensure(logger)
	}
}

// NewCache builds an empty cache. The first Credential call triggers a refresh.
func NewCache(issuer Issuer, opts ...Option) *Cache {
	c := &Cache{
		issuer:  issuer,
		margin:  DefaultRefreshMargin,
		timeout: DefaultRefreshTimeout,
		now:     time.Now,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Credential returns a credential with at least the refresh margin left.
// Concurrent callers that find the cache empty or stale share one refresh.
// If ctx ends first the caller gets ctx.Err() while the refresh keeps going
// and still installs its result.
func (c *Cache) Credential(ctx context.Context) (Credential, error) {
	observed := c.current.Load()
	if observed != nil && observed.UsableAt(c.now(), c.margin) {
		return *observed, nil
	}
	cred, err := c.refresh(ctx, observed)
	if err != nil {
		return Credential{}, err
	}
	return *cred, nil
}

// ForceRefresh replaces rejected, the credential the platform refused. When
// another caller already installed a different usable credential that one is
// returned and the issuer is not called, so one rejected credential costs at
// most one refresh no matter when its rejections arrive.
func (c *Cache) ForceRefresh(ctx context.Context, rejected Credential) (Credential, error) {
	observed := c.current.Load()
	if observed != nil && observed.Value != rejected.Value && observed.UsableAt(c.now(), c.margin) {
		c.logger.Debug("auth.refresh.superseded")
		return *observed, nil
	}
	cred, err := c.refresh(ctx, observed)
	if err != nil {
		return Credential{}, err
	}
	if cred.Value == rejected.Value {
		// joined a flight that returned the rejected credential
		if cred, err = c.refresh(ctx, cred); err != nil {
			return Credential{}, err
		}
	}
	return *cred, nil
}

// Current returns the installed credential without refreshing.
func (c *Cache) Current() (Credential, bool) {
	cred := c.current.Load()
	if cred == nil {
		return Credential{}, false
	}
	return *cred, true
}

// refresh leads or joins the single in-flight refresh. stale is the
// credential the caller considers unusable.
func (c *Cache) refresh(ctx context.Context, stale *Credential) (*Credential, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		if cur := c.current.Load(); cur != nil && cur != stale && cur.UsableAt(c.now(), c.margin) {
			return cur, nil
		}
		return c.issue(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Credential), nil
	}
}

func (c *Cache) issue(ctx context.Context) (*Credential, error) {
	if c.issuer == nil {
		return nil, &CredentialError{Err: errIssuerMissing}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("auth.refresh.started")
	started := c.now()
	grant, err := c.issuer.Issue(ctx)
	if err == nil {
		err = c.checkGrant(grant)
	}
	if err != nil {
		c.logger.Warn("auth.refresh.failed", "error", err)
		return nil, &CredentialError{Err: err}
	}

	cred := &Credential{
		Value:      grant.Value,
		ObtainedAt: started,
		ExpiresAt:  started.Add(grant.Lifetime),
	}
	c.current.Store(cred)
	c.logger.Info("auth.refresh.completed", "expires_at", cred.ExpiresAt, "lifetime", grant.Lifetime)
	return cred, nil
}

func (c *Cache) checkGrant(grant Grant) error {
	if strings.TrimSpace(grant.Value) == "" {
		return errors.New("issuer returned an empty credential")
	}
	if grant.Lifetime <= c.margin {
		return fmt.Errorf("issued lifetime %s does not exceed refresh margin %s", grant.Lifetime, c.margin)
	}
	return nil
}
