package panggil

import (
	"context"
	"net/http"
	"time"
)

// RequestOption adjusts one Request before it is executed.
type RequestOption func(*Request)

// WithQuery sets the query parameters; nil values are omitted from the URL.
func WithQuery(query map[string]any) RequestOption {
	return func(r *Request) {
		r.Query = query
	}
}

// WithHeader adds one header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set(key, value)
	}
}

// WithSchema attaches a response schema validated after decoding.
func WithSchema(schema Schema) RequestOption {
	return func(r *Request) {
		r.Schema = schema
	}
}

// WithMeta replaces the per-call Meta wholesale, including the visibility
// default applied by the verb.
func WithMeta(meta Meta) RequestOption {
	return func(r *Request) {
		r.Meta = meta
	}
}

// WithRetries overrides the retry budget for this call only.
func WithRetries(n int) RequestOption {
	return func(r *Request) {
		r.Meta.MaxRetries = n
	}
}

// WithCallTimeout overrides the per-attempt timeout for this call only.
func WithCallTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.Meta.Timeout = d
	}
}

// WithCorrelationID pins the correlation id instead of generating one.
func WithCorrelationID(id string) RequestOption {
	return func(r *Request) {
		r.Meta.CorrelationID = id
	}
}

func (c *Client) call(ctx context.Context, method, path string, skipAuth bool, body, out any, opts []RequestOption) (*Response, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Body:   body,
		Meta:   Meta{SkipAuth: skipAuth},
	}
	for _, opt := range opts {
		opt(req)
	}
	return c.Do(ctx, req, out)
}

// Get performs an authenticated GET, decoding the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, false, nil, out, opts)
}

// GetPublic performs an unauthenticated GET.
func (c *Client) GetPublic(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, true, nil, out, opts)
}

// Post performs an authenticated POST with a JSON-encoded body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPost, path, false, body, out, opts)
}

// PostPublic performs an unauthenticated POST.
func (c *Client) PostPublic(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPost, path, true, body, out, opts)
}

// Put performs an authenticated PUT with a JSON-encoded body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, false, body, out, opts)
}

// PutPublic performs an unauthenticated PUT.
func (c *Client) PutPublic(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, true, body, out, opts)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, false, nil, out, opts)
}

// DeletePublic performs an unauthenticated DELETE.
func (c *Client) DeletePublic(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, true, nil, out, opts)
}
