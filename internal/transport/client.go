package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	DefaultTimeout = 30 * time.Second

	tokenEndpoint   = "/cgi-bin/token"
	maxResponseSize = 16 << 20
)

// File is a multipart attachment.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Request describes one platform call. Body is JSON encoded; File switches
// the request to multipart/form-data with Fields as extra form values.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	Body     any
	File     *File
	Fields   map[string]string
}

// Client performs platform calls and maps the errcode envelope onto
// go-errors categories.
type Client struct {
	baseURL string
	http    *http.Client
	logger  interfaces.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger sets the transport logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Ensure(logger)
	}
}

// New builds a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type envelope struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Call sends req with token as access_token and decodes the response into
// out when it is non-nil.
func (c *Client) Call(ctx context.Context, token string, req Request, out any) error {
	httpReq, err := c.build(ctx, token, req)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return networkError(req.Endpoint, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return networkError(req.Endpoint, err)
	}

	c.logger.Debug("transport.call.completed",
		"endpoint", req.Endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(req.Endpoint, resp.StatusCode)
	}

	var env envelope
	if len(bytes.TrimSpace(body)) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, &env); err != nil {
			return decodeError(req.Endpoint, err)
		}
	}
	if env.ErrCode != 0 {
		c.logger.Warn("transport.call.rejected",
			"endpoint", req.Endpoint,
			"errcode", env.ErrCode,
			"errmsg", env.ErrMsg,
		)
		return platformError(req.Endpoint, env.ErrCode, env.ErrMsg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return decodeError(req.Endpoint, err)
	}
	return nil
}

// CallAuthorized performs Call with a credential from src. When the platform
// rejects the credential it forces one refresh and retries once.
func (c *Client) CallAuthorized(ctx context.Context, src auth.Source, req Request, out any) error {
	cred, err := src.Credential(ctx)
	if err != nil {
		return err
	}
	err = c.Call(ctx, cred.Value, req, out)
	if !IsCredentialRejected(err) {
		return err
	}

	c.logger.Info("transport.credential.rejected", "endpoint", req.Endpoint)
	if cred, err = src.ForceRefresh(ctx, cred); err != nil {
		return err
	}
	return c.Call(ctx, cred.Value, req, out)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueCredential exchanges the app credentials for an access token.
func (c *Client) IssueCredential(ctx context.Context, appID, secret string) (string, time.Duration, error) {
	var out tokenResponse
	err := c.Call(ctx, "", Request{
		Method:   http.MethodGet,
		Endpoint: tokenEndpoint,
		Query: url.Values{
			"grant_type": {"client_credential"},
			"appid":      {appID},
			"secret":     {secret},
		},
	}, &out)
	if err != nil {
		return "", 0, err
	}
	if out.AccessToken == "" {
		return "", 0, decodeError(tokenEndpoint, errors.New("missing access_token"))
	}
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

// Issuer adapts IssueCredential to auth.Issuer.
func (c *Client) Issuer(appID, secret string) auth.Issuer {
	return auth.IssuerFunc(func(ctx context.Context) (auth.Grant, error) {
		value, lifetime, err := c.IssueCredential(ctx, appID, secret)
		if err != nil {
			return auth.Grant{}, err
		}
		return auth.Grant{Value: value, Lifetime: lifetime}, nil
	})
}

func (c *Client) build(ctx context.Context, token string, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	query := url.Values{}
	for key, values := range req.Query {
		query[key] = append([]string(nil), values...)
	}
	if token != "" {
		query.Set("access_token", token)
	}
	target := c.baseURL + req.Endpoint
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.File != nil:
		payload, ct, err := encodeMultipart(req.File, req.Fields)
		if err != nil {
			return nil, fmt.Errorf("transport: encode multipart %s: %w", req.Endpoint, err)
		}
		body, contentType = payload, ct
	case req.Body != nil:
		payload, err := encodeJSON(req.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode body %s: %w", req.Endpoint, err)
		}
		body, contentType = payload, "application/json; charset=utf-8"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request %s: %w", req.Endpoint, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

// encodeJSON keeps <, > and & literal; article HTML is sent verbatim.
func encodeJSON(v any) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeMultipart(file *File, fields map[string]string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	field := file.Field
	if field == "" {
		field = "media"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(file.Name)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// redact strips credentials from url.Error messages before they are logged
// or returned.
func redact(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	parsed, perr := url.Parse(uerr.URL)
	if perr != nil {
		return err
	}
	query := parsed.Query()
	for _, key := range []string{"access_token", "secret"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return &url.Error{Op: uerr.Op, URL: parsed.String(), Err: uerr.Err}
}
