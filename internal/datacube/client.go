package datacube

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/transport"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// DateLayout is the date format every endpoint expects.
const DateLayout = "2006-01-02"

const (
	articleReadEndpoint  = "/cgi-bin/datacube/getarticleread"
	articleShareEndpoint = "/cgi-bin/datacube/getarticleshare"
	bizSummaryEndpoint   = "/cgi-bin/datacube/getbizsummary"
	totalDetailEndpoint  = "/cgi-bin/datacube/getarticletotaldetail"
)

var ErrRangeInverted = errors.New("datacube: begin date is after end date")

// Range is an inclusive pair of YYYY-MM-DD dates.
type Range struct {
	Begin string `json:"begin_date"`
	End   string `json:"end_date"`
}

// Day returns a single-day range.
func Day(t time.Time) Range {
	d := t.Format(DateLayout)
	return Range{Begin: d, End: d}
}

func (r Range) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Begin, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.End, validation.Required, validation.Date(DateLayout)),
	)
	if err != nil {
		return err
	}
	if r.Begin > r.End {
		return ErrRangeInverted
	}
	return nil
}

// Caller is the transport surface the client needs.
type Caller interface {
	CallAuthorized(ctx context.Context, src auth.Source, req transport.Request, out any) error
}

// Client reads article statistics.
type Client struct {
	caller      Caller
	credentials auth.Source
	logger      interfaces.Logger
}

type Option func(*Client)

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(caller Caller, credentials auth.Source, opts ...Option) *Client {
	c := &Client{caller: caller, credentials: credentials}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = logging.Ensure(c.logger)
	return c
}

// GetArticleRead returns daily read counts per message.
func (c *Client) GetArticleRead(ctx context.Context, r Range) (Response[ArticleRead], error) {
	return fetch[ArticleRead](ctx, c, articleReadEndpoint, r)
}

// GetArticleShare returns daily share counts per message.
func (c *Client) GetArticleShare(ctx context.Context, r Range) (Response[ArticleShare], error) {
	return fetch[ArticleShare](ctx, c, articleShareEndpoint, r)
}

// GetBizSummary returns the account overview per day.
func (c *Client) GetBizSummary(ctx context.Context, r Range) (Response[BizSummary], error) {
	return fetch[BizSummary](ctx, c, bizSummaryEndpoint, r)
}

// GetArticleTotalDetail returns the per-message detail breakdown.
func (c *Client) GetArticleTotalDetail(ctx context.Context, r Range) (Response[ArticleTotalDetail], error) {
	return fetch[ArticleTotalDetail](ctx, c, totalDetailEndpoint, r)
}

func fetch[T any](ctx context.Context, c *Client, endpoint string, r Range) (Response[T], error) {
	var resp Response[T]
	if err := r.Validate(); err != nil {
		return resp, err
	}
	c.logger.Debug("datacube.fetch", "endpoint", endpoint, "begin", r.Begin, "end", r.End)
	req := transport.Request{Endpoint: endpoint, Body: r}
	if err := c.caller.CallAuthorized(ctx, c.credentials, req, &resp); err != nil {
		return Response[T]{}, err
	}
	return resp, nil
}
