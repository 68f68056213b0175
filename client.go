package panggil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a typed HTTP client that layers authentication injection,
// deduplicated token refresh, retry with exponential backoff, response
// schema validation and structured event logging around the standard
// net/http Client. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	cookieClient *http.Client
	baseURL      string
	config       Config

	interceptors *Interceptors
	refresh      *RefreshCoordinator
	retryPolicy  RetryPolicy
	validator    Validator

	metrics  *MetricsCollector
	perf     PerfTracker
	busy     BusyIndicator
	notifier Notifier
	navigate *debouncer
	logger   Logger

	validationError error
}

// Response is the settled outcome of a successful logical call. The body has
// been fully read; Decoded output lives in the out argument passed to the
// call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NoContent reports whether the response carried no body.
func (r *Response) NoContent() bool {
	return r.Status == http.StatusNoContent || len(r.Body) == 0
}

// New constructs a Client from environment-derived defaults plus the
// provided functional options. A best effort validation is performed; call
// IsValid / ValidationError for the result.
func New(options ...Option) *Client {
	cfg := LoadConfig()

	client := &Client{
		httpClient:  &http.Client{},
		config:      cfg,
		refresh:     NewRefreshCoordinator(),
		retryPolicy: NewBackoffRetryPolicy(),
		validator:   SchemaValidator{},
		navigate:    newDebouncer(defaultNavigateWindow),
		logger:      nopLogger{},
	}
	client.interceptors = newInterceptors(cfg)

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Configure replaces parts of the interceptor registry; see
// InterceptorConfig for the merge semantics.
func (c *Client) Configure(update InterceptorConfig) {
	c.interceptors.Configure(update)
}

// Do executes one logical call: the attempt loop, the refresh-and-replay
// path and response decoding. out receives the decoded JSON body when
// non-nil. The returned error is always a *AppError.
func (c *Client) Do(ctx context.Context, req *Request, out any) (*Response, error) {
	if req == nil || req.Method == "" || req.Path == "" {
		return nil, NewAppError(KindUnknown, "request needs a method and a path", 0, nil)
	}

	icfg := c.interceptors.snapshot()
	meta := req.Meta.withDefaults(c.config, icfg.RequestID)

	if c.busy != nil && !meta.SuppressLoading {
		c.busy.Increment()
		defer c.busy.Decrement()
	}

	resp, appErr := c.run(ctx, req, meta, out)
	if appErr != nil {
		return nil, c.escalate(appErr, req, meta)
	}
	return resp, nil
}

// run drives the attempt-indexed loop: BUILD, DECORATE, SEND, INSPECT, then
// the retry / refresh-and-replay decision. The unauthorized replay keeps the
// attempt index and does not consume retry budget; refresh happens at most
// once per logical call.
func (c *Client) run(ctx context.Context, req *Request, meta Meta, out any) (*Response, *AppError) {
	attempt := 0
	refreshTried := false

	for {
		resp, appErr := c.attempt(ctx, req, meta, attempt, out)
		if appErr == nil {
			return resp, nil
		}

		if appErr.Kind == KindUnauthorized && !meta.SkipAuthRefresh && !refreshTried {
			refreshTried = true
			icfg := c.interceptors.snapshot()
			token, err := c.refresh.Attempt(ctx, icfg.Credentials)
			c.recordRefresh(token, err)
			if err == nil && token != "" {
				// Replay with the same attempt index; decoration picks up
				// the refreshed credential.
				continue
			}
			if err != nil {
				c.logger.Warn("token refresh failed", "error", err.Error(), "correlationID", meta.CorrelationID)
			}
			return nil, appErr
		}
		if appErr.Kind == KindUnauthorized {
			return nil, appErr
		}

		delay, retry := c.retryPolicy.ShouldRetry(appErr, attempt, meta.MaxRetries, meta.RetryDelay)
		if !retry {
			return nil, appErr
		}

		if c.metrics != nil {
			c.metrics.RecordRetry(req.Method, endpointLabel(req.Path))
		}
		c.logger.Info("scheduling retry", "attempt", attempt+1, "maxRetries", meta.MaxRetries, "backoff", delay, "correlationID", meta.CorrelationID)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			normalized, _ := Normalize(ctx.Err())
			c.emitError(c.interceptors.snapshot(), req.Method, req.Path, attempt, meta.CorrelationID, normalized)
			return nil, normalized
		}
		attempt++
	}
}

// attempt performs one BUILD, DECORATE, SEND, INSPECT cycle, including the
// decode of a success body.
func (c *Client) attempt(ctx context.Context, req *Request, meta Meta, attempt int, out any) (*Response, *AppError) {
	icfg := c.interceptors.snapshot()

	fullURL, err := buildURL(c.baseURL, req.Path, req.Query)
	if err != nil {
		appErr := c.normalizeAttemptError(err)
		c.emitError(icfg, req.Method, req.Path, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}

	body, impliedType, rawBody, err := serializeBody(req.Body)
	if err != nil {
		appErr := c.normalizeAttemptError(err)
		c.emitError(icfg, req.Method, fullURL, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}

	attemptCtx, cancel := context.WithTimeout(ctx, meta.Timeout)
	defer cancel()

	hr, err := http.NewRequestWithContext(attemptCtx, req.Method, fullURL, body)
	if err != nil {
		appErr := c.normalizeAttemptError(err)
		c.emitError(icfg, req.Method, fullURL, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}
	for key, values := range req.Header {
		for _, value := range values {
			hr.Header.Add(key, value)
		}
	}

	icfg.decorate(hr, meta, impliedType, rawBody, c.config.ClientHeader, c.config.Locale)

	icfg.Events.Emit(LogEvent{
		Type:          EventRequest,
		Method:        req.Method,
		URL:           fullURL,
		Attempt:       attempt,
		CorrelationID: meta.CorrelationID,
	})
	c.logger.Debug("starting attempt", "method", req.Method, "url", fullURL, "attempt", attempt, "correlationID", meta.CorrelationID)

	start := time.Now()
	httpResp, sendErr := c.transportFor(meta).Do(hr)
	if sendErr != nil {
		appErr := c.normalizeAttemptError(sendErr)
		c.recordAttempt(req.Method, fullURL, 0)
		c.emitError(icfg, req.Method, fullURL, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}

	var raw []byte
	if httpResp.StatusCode != http.StatusNoContent {
		raw = readBody(httpResp)
	} else if httpResp.Body != nil {
		httpResp.Body.Close()
	}
	duration := time.Since(start)
	c.recordAttempt(req.Method, fullURL, httpResp.StatusCode)

	if appErr := inspect(httpResp, raw); appErr != nil {
		c.emitError(icfg, req.Method, fullURL, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   raw,
	}
	if appErr := c.decodeResponse(resp, req.Schema, out); appErr != nil {
		c.emitError(icfg, req.Method, fullURL, attempt, meta.CorrelationID, appErr)
		return nil, appErr
	}

	icfg.Events.Emit(LogEvent{
		Type:          EventResponse,
		Method:        req.Method,
		URL:           fullURL,
		Attempt:       attempt,
		CorrelationID: meta.CorrelationID,
		Status:        httpResp.StatusCode,
		Duration:      duration,
	})
	if c.perf != nil {
		c.perf.Track(fmt.Sprintf("%s:%s", req.Method, fullURL), duration)
	}

	return resp, nil
}

// decodeResponse decodes a success body as JSON, validates it against the
// schema when one is set, and unmarshals into out. A 204 (or empty body)
// yields the empty result without touching the body, regardless of schema.
func (c *Client) decodeResponse(resp *Response, schema Schema, out any) *AppError {
	if resp.NoContent() {
		return nil
	}

	if !schema.empty() {
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err != nil {
			normalized, _ := Normalize(err)
			return normalized
		}
		if err := c.validator.Validate(schema, decoded); err != nil {
			normalized, _ := Normalize(err)
			return normalized
		}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			normalized, unknown := Normalize(err)
			if unknown {
				c.logger.Error("decoding response failed", "error", err.Error())
			}
			return normalized
		}
	}
	return nil
}

// escalate routes a terminal error through its side effects: unauthorized
// navigation (debounced) or the coalesced user notification, plus metrics.
// Notification failures are logged, never re-thrown.
func (c *Client) escalate(appErr *AppError, req *Request, meta Meta) *AppError {
	if c.metrics != nil {
		c.metrics.RecordError(appErr.Kind, req.Method, endpointLabel(req.Path))
	}

	if appErr.Kind == KindUnauthorized {
		if !meta.SkipAuthRefresh {
			icfg := c.interceptors.snapshot()
			c.navigate.Fire(func() {
				if icfg.Credentials != nil {
					icfg.Credentials.OnUnauthorized()
				}
				if icfg.OnUnauthorized != nil {
					icfg.OnUnauthorized()
				}
			})
		}
		return appErr
	}

	if c.notifier != nil && !meta.SuppressErrorNotice {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("notifier panicked", "recovered", fmt.Sprint(r))
				}
			}()
			c.notifier.Notify(appErr.Kind, appErr.Message)
		}()
	}
	return appErr
}

func (c *Client) normalizeAttemptError(err error) *AppError {
	normalized, unknown := Normalize(err)
	if unknown {
		c.logger.Error("unclassified error", "error", err.Error())
	}
	return normalized
}

func (c *Client) emitError(icfg InterceptorConfig, method, url string, attempt int, correlationID string, appErr *AppError) {
	icfg.Events.Emit(LogEvent{
		Type:          EventError,
		Method:        method,
		URL:           url,
		Attempt:       attempt,
		CorrelationID: correlationID,
		Err:           appErr,
	})
}

func (c *Client) recordAttempt(method, url string, status int) {
	if c.metrics != nil {
		c.metrics.RecordAttempt(method, endpointLabel(url), status)
	}
}

func (c *Client) recordRefresh(token string, err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err != nil:
		c.metrics.RecordRefresh("failure")
	case token == "":
		c.metrics.RecordRefresh("empty")
	default:
		c.metrics.RecordRefresh("success")
	}
}

// transportFor picks the cookie-jar client for WithCredentials calls when
// one is configured.
func (c *Client) transportFor(meta Meta) *http.Client {
	if meta.WithCredentials && c.cookieClient != nil {
		return c.cookieClient
	}
	return c.httpClient
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}
