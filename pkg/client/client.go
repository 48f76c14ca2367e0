package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/types"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20
)

// TokenStore persists the signed-in session between runs.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// BreakerSettings tunes the circuit breaker guarding the API.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Store      TokenStore
	Breaker    BreakerSettings
	Logger     *logger.Logger
}

// Client talks to the marketplace API.
type Client struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*rawResponse]
	store   TokenStore
	logg    *logger.Logger

	mu      sync.Mutex
	loaded  bool
	session *storedSession

	refreshes singleflight.Group
}

type rawResponse struct {
	status int
	body   []byte
}

var errServerStatus = errors.New("server error status")

// New validates opts and builds a client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("token store required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		base:  base,
		http:  httpClient,
		store: opts.Store,
		logg:  opts.Logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](breakerSettings(opts.Breaker, c.logg))
	return c, nil
}

func breakerSettings(cfg BreakerSettings, logg *logger.Logger) gobreaker.Settings {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return gobreaker.Settings{
		Name:        "secosha-api",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "api circuit breaker state changed")
		},
	}
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	auth        bool
}

func jsonRequest(method, path string, payload any, auth bool) (request, error) {
	req := request{method: method, path: path, auth: auth}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return request{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		req.body = body
		req.contentType = "application/json"
	}
	return req, nil
}

// call sends req and decodes the success envelope's data into out. An
// authenticated call that hits 401 refreshes the session once and retries.
func (c *Client) call(ctx context.Context, req request, out any) error {
	raw, err := c.send(ctx, req, "")
	if err != nil {
		return err
	}
	if raw.status == http.StatusUnauthorized && req.auth {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		raw, err = c.send(ctx, req, "")
		if err != nil {
			return err
		}
	}
	return decode(raw, out)
}

// send performs one round trip through the breaker. bearer overrides the stored access token.
func (c *Client) send(ctx context.Context, req request, bearer string) (*rawResponse, error) {
	target := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	if req.auth && bearer == "" {
		session, err := c.currentSession(ctx)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
		}
		bearer = session.AccessToken
	}

	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		var body io.Reader
		if req.body != nil {
			body = bytes.NewReader(req.body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Accept", "application/json")
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}
		if bearer != "" {
			httpReq.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		raw := &rawResponse{status: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			return raw, errServerStatus
		}
		return raw, nil
	})

	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, errServerStatus):
		return raw, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "marketplace temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	default:
		ctx = c.logg.WithFields(ctx, map[string]any{"method": req.method, "path": req.path})
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "api request failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "unable to reach marketplace")
	}
}

func decode(raw *rawResponse, out any) error {
	if raw.status >= http.StatusBadRequest {
		return decodeError(raw)
	}
	if out == nil {
		return nil
	}
	var env types.RawSuccessEnvelope
	if err := json.Unmarshal(raw.body, &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "malformed response")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "malformed response data")
	}
	return nil
}

// decodeError turns the API error envelope back into a typed error.
func decodeError(raw *rawResponse) error {
	var env types.RawErrorEnvelope
	if err := json.Unmarshal(raw.body, &env); err != nil || env.Error.Code == "" {
		return pkgerrors.New(codeForStatus(raw.status), http.StatusText(raw.status))
	}
	typed := pkgerrors.New(pkgerrors.Code(env.Error.Code), env.Error.Message)
	if len(env.Error.Details) > 0 && string(env.Error.Details) != "null" {
		var details any
		if err := json.Unmarshal(env.Error.Details, &details); err == nil {
			typed = typed.WithDetails(details)
		}
	}
	return typed
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusGatewayTimeout:
		return pkgerrors.CodeTimeout
	case http.StatusServiceUnavailable:
		return pkgerrors.CodeDependency
	default:
		if status >= http.StatusInternalServerError {
			return pkgerrors.CodeNetwork
		}
		return pkgerrors.CodeInternal
	}
}
