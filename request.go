package panggil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request describes one logical call. A Request is owned by exactly one call
// and never shared; the engine defaults its Meta once and treats the result
// as immutable across retries and replays.
type Request struct {
	Method string
	Path   string
	Header http.Header
	// Query holds string/number/boolean parameters; nil values are omitted.
	Query map[string]any
	// Body is passed through unchanged when it is an io.Reader, []byte or
	// url.Values; anything else is JSON-encoded. nil means no body.
	Body   any
	Schema Schema
	Meta   Meta
}

// Meta is the per-call configuration. Zero values mean "use the configured
// default"; boolean fields are named so the zero value matches the default
// behavior.
type Meta struct {
	// SkipAuth leaves the Authorization header untouched.
	SkipAuth bool
	// SkipAuthRefresh disables the refresh-and-replay path on 401.
	SkipAuthRefresh bool
	// SuppressLoading keeps the busy indicator untouched for this call.
	SuppressLoading bool
	// SuppressErrorNotice disables the user-facing error notification.
	SuppressErrorNotice bool
	// MaxRetries is the number of extra attempts after the first. 0 means
	// the configured default; -1 forces zero retries even when the default
	// is positive.
	MaxRetries int
	// RetryDelay is the backoff base delay. 0 means the configured default;
	// a negative value forces an immediate retry with no base delay.
	RetryDelay time.Duration
	// Timeout bounds each attempt; 0 means the configured default.
	Timeout time.Duration
	// CorrelationID is generated when empty.
	CorrelationID string
	// WithCredentials sends stored cookies with the request.
	WithCredentials bool
}

// withDefaults resolves zero values against the config once per logical
// call. The returned Meta is final for the call's lifetime.
func (m Meta) withDefaults(cfg Config, newID func() string) Meta {
	if m.MaxRetries == 0 {
		m.MaxRetries = cfg.MaxRetries
	} else if m.MaxRetries < 0 {
		m.MaxRetries = 0
	}
	if m.RetryDelay == 0 {
		m.RetryDelay = cfg.RetryDelay
	} else if m.RetryDelay < 0 {
		m.RetryDelay = 0
	}
	if m.Timeout <= 0 {
		m.Timeout = cfg.Timeout
	}
	if m.CorrelationID == "" {
		m.CorrelationID = newID()
	}
	return m
}

// buildURL joins the base origin with the request path and appends query
// parameters, omitting nil values. An absolute Path overrides the base.
func buildURL(base, path string, query map[string]any) (string, error) {
	raw := path
	if !strings.Contains(path, "://") && base != "" {
		raw = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if len(query) > 0 {
		q := u.Query()
		for key, value := range query {
			if value == nil {
				continue
			}
			q.Set(key, formatQueryValue(value))
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func formatQueryValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return fmt.Sprintf("%t", t)
	case float32, float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// serializeBody turns the request body into a reader plus the content type
// it implies. Binary and stream payloads pass through raw so the transport
// (or the caller) controls their content type; form values encode with the
// form type; everything else is JSON-encoded, including primitives. raw
// reports whether the payload bypassed encoding.
func serializeBody(body any) (r io.Reader, contentType string, raw bool, err error) {
	switch b := body.(type) {
	case nil:
		return nil, "", false, nil
	case io.Reader:
		return b, "", true, nil
	case []byte:
		return bytes.NewReader(b), "", true, nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", false, nil
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", false, err
		}
		return bytes.NewReader(encoded), "application/json", false, nil
	}
}

// newCorrelationID prefers a version-4 UUID and falls back to a
// pseudo-random hex string if the system entropy source fails.
func newCorrelationID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("%016x", rand.Uint64())
	}
	return id.String()
}

// endpointLabel reduces a URL to a low-cardinality host+path label for
// metrics and debug traces.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(u.Host)
	if u.Path != "" && u.Path != "/" {
		builder.WriteString(u.Path)
	} else {
		builder.WriteByte('/')
	}
	return builder.String()
}
