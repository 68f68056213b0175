package panggil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Header names set by request decoration.
const (
	headerContentType    = "Content-Type"
	headerAccept         = "Accept"
	headerClient         = "X-Client"
	headerAcceptLanguage = "Accept-Language"
	headerAuthorization  = "Authorization"
	headerCorrelation    = "X-Request-ID"
)

// InterceptorConfig holds the pluggable strategies consulted on every
// attempt. Nil fields in a Configure update keep their prior values.
type InterceptorConfig struct {
	// Credentials supplies and refreshes the access token.
	Credentials CredentialProvider
	// TokenFallback is the secondary persisted-token lookup; its errors are
	// swallowed as "no token".
	TokenFallback TokenFallback
	// Locale resolves the Accept-Language value; an empty result falls back
	// to the configured default locale.
	Locale func() string
	// RequestID generates correlation ids for calls that supply none.
	RequestID func() string
	// Events receives every LogEvent.
	Events EventSink
	// OnUnauthorized runs on unrecoverable authorization failure, in
	// addition to the credential provider's own handler.
	OnUnauthorized func()
}

// Interceptors is the process-wide registry of pluggable strategies. It
// holds exactly one active configuration, replaced only through Configure,
// and is read by every request.
type Interceptors struct {
	mu  sync.RWMutex
	cfg InterceptorConfig
}

func newInterceptors(cfg Config) *Interceptors {
	locale := cfg.Locale
	return &Interceptors{
		cfg: InterceptorConfig{
			Locale:    func() string { return locale },
			RequestID: newCorrelationID,
			Events:    nopEventSink{},
		},
	}
}

// Configure shallow-merges the update over the active configuration:
// unspecified (nil) fields retain their prior values. This is the only
// mutation path; there is no partial reset.
func (i *Interceptors) Configure(update InterceptorConfig) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if update.Credentials != nil {
		i.cfg.Credentials = update.Credentials
	}
	if update.TokenFallback != nil {
		i.cfg.TokenFallback = update.TokenFallback
	}
	if update.Locale != nil {
		i.cfg.Locale = update.Locale
	}
	if update.RequestID != nil {
		i.cfg.RequestID = update.RequestID
	}
	if update.Events != nil {
		i.cfg.Events = update.Events
	}
	if update.OnUnauthorized != nil {
		i.cfg.OnUnauthorized = update.OnUnauthorized
	}
}

func (i *Interceptors) snapshot() InterceptorConfig {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cfg
}

// resolveToken returns the current access token: in-memory provider first,
// then the fallback lookup. Lookup errors mean "no token".
func (cfg InterceptorConfig) resolveToken() string {
	if cfg.Credentials != nil {
		if token := cfg.Credentials.AccessToken(); token != "" {
			return token
		}
	}
	if cfg.TokenFallback != nil {
		if token, err := cfg.TokenFallback(); err == nil {
			return token
		}
	}
	return ""
}

// decorate applies the per-attempt request decoration: content negotiation
// headers, client identifier, locale, bearer token and correlation id. None
// of these override caller-supplied values.
func (cfg InterceptorConfig) decorate(hr *http.Request, meta Meta, impliedType string, hasRawBody bool, clientHeader, defaultLocale string) {
	if hr.Header.Get(headerContentType) == "" {
		switch {
		case impliedType != "":
			hr.Header.Set(headerContentType, impliedType)
		case !hasRawBody:
			// Raw payloads keep whatever type the caller or transport
			// chooses; everything else defaults to JSON.
			hr.Header.Set(headerContentType, "application/json")
		}
	}
	if hr.Header.Get(headerAccept) == "" {
		hr.Header.Set(headerAccept, "application/json")
	}
	if hr.Header.Get(headerClient) == "" {
		hr.Header.Set(headerClient, clientHeader)
	}
	if hr.Header.Get(headerAcceptLanguage) == "" {
		locale := ""
		if cfg.Locale != nil {
			locale = cfg.Locale()
		}
		if locale == "" {
			locale = defaultLocale
		}
		hr.Header.Set(headerAcceptLanguage, locale)
	}
	if !meta.SkipAuth && hr.Header.Get(headerAuthorization) == "" {
		if token := cfg.resolveToken(); token != "" {
			hr.Header.Set(headerAuthorization, "Bearer "+token)
		}
	}
	if hr.Header.Get(headerCorrelation) == "" {
		hr.Header.Set(headerCorrelation, meta.CorrelationID)
	}
}

// inspect classifies an error-path response. 401 is always UNAUTHORIZED, 403
// always FORBIDDEN and any 5xx always SERVER; inspection never decides to
// retry. Non-error statuses return nil and pass through to decoding.
func inspect(resp *http.Response, body []byte) *AppError {
	if resp.StatusCode < 400 {
		return nil
	}
	kind := ClassifyStatus(resp.StatusCode)
	return NewAppError(kind, "", resp.StatusCode, parseErrorBody(resp, body))
}

// parseErrorBody decodes an error response defensively: JSON when the
// content type says so, raw text otherwise, nil when nothing can be read.
func parseErrorBody(resp *http.Response, body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if strings.Contains(resp.Header.Get(headerContentType), "application/json") {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			return decoded
		}
		return nil
	}
	return string(body)
}

// readBody drains and closes a response body, tolerating read failures.
func readBody(resp *http.Response) []byte {
	if resp.Body == nil {
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return body
}
