package panggil

import (
	"net/http"
	"time"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL sets the origin prepended to relative request paths.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCookieJar enables a cookie-carrying transport used by calls that set
// Meta.WithCredentials.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.cookieClient = &http.Client{Jar: jar}
	}
}

// WithConfig replaces the environment-derived defaults wholesale.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		c.config = cfg
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = d
	}
}

// WithMaxRetries sets the default number of extra attempts per call.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.config.MaxRetries = n
	}
}

// WithRetryDelay sets the default backoff base delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.config.RetryDelay = d
	}
}

// WithRetryPolicy sets a custom retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithRefreshCoordinator sets a custom refresh coordinator, letting tests or
// cooperating clients share (or reset) the single-refresh discipline.
func WithRefreshCoordinator(rc *RefreshCoordinator) Option {
	return func(c *Client) {
		c.refresh = rc
	}
}

// WithValidator sets a custom response schema validator.
func WithValidator(v Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithMetrics enables Prometheus metrics collection on the default
// registerer. The collector doubles as the performance tracker and, when no
// other indicator is set, the busy indicator.
func WithMetrics() Option {
	return WithMetricsCollector(NewMetricsCollector())
}

// WithMetricsCollector wires a custom metrics collector.
func WithMetricsCollector(mc *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = mc
		if c.perf == nil {
			c.perf = mc
		}
		if c.busy == nil {
			c.busy = mc
		}
	}
}

// WithPerfTracker sets the hook receiving per-response duration samples.
func WithPerfTracker(pt PerfTracker) Option {
	return func(c *Client) {
		c.perf = pt
	}
}

// WithBusyIndicator sets the reference-counted in-flight signal.
func WithBusyIndicator(b BusyIndicator) Option {
	return func(c *Client) {
		c.busy = b
	}
}

// WithNotifier sets the user-facing error notifier. Notifications are
// coalesced by "{kind}:{message}" so identical repeated errors surface once.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = newCoalescingNotifier(n, defaultCoalesceWindow)
	}
}

// WithNavigateDebounce bounds how often the unauthorized navigation side
// effect may fire.
func WithNavigateDebounce(window time.Duration) Option {
	return func(c *Client) {
		c.navigate = newDebouncer(window)
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCredentials wires the credential provider into the interceptor
// registry.
func WithCredentials(provider CredentialProvider) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{Credentials: provider})
	}
}

// WithTokenFallback wires the secondary persisted-token lookup.
func WithTokenFallback(fn TokenFallback) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{TokenFallback: fn})
	}
}

// WithLocaleResolver wires the Accept-Language resolver.
func WithLocaleResolver(fn func() string) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{Locale: fn})
	}
}

// WithRequestIDGenerator wires a custom correlation-id generator.
func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{RequestID: fn})
	}
}

// WithEventSink wires the LogEvent consumer.
func WithEventSink(sink EventSink) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{Events: sink})
	}
}

// WithUnauthorizedHandler wires an additional unrecoverable-authorization
// hook, typically route navigation.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.interceptors.Configure(InterceptorConfig{OnUnauthorized: fn})
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error describing every problem found, or nil.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	if c.httpClient == nil {
		problems = append(problems, "HTTP client cannot be nil")
	}
	if c.config.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.config.MaxRetries < 0 {
		problems = append(problems, "maxRetries must be non-negative")
	}
	if c.config.MaxRetries > 100 {
		problems = append(problems, "maxRetries > 100 may cause excessive resource usage")
	}
	if c.config.RetryDelay < 0 {
		problems = append(problems, "retryDelay must be non-negative")
	}
	if c.config.Timeout > 10*time.Minute {
		problems = append(problems, "timeout > 10m may cause requests to hang for too long")
	}
	if c.config.ClientHeader == "" {
		problems = append(problems, "client header value cannot be empty")
	}
	if c.retryPolicy == nil {
		problems = append(problems, "retry policy cannot be nil")
	}
	if c.refresh == nil {
		problems = append(problems, "refresh coordinator cannot be nil")
	}
	if c.validator == nil {
		problems = append(problems, "validator cannot be nil")
	}

	if len(problems) > 0 {
		return NewAppError(KindValidation, "configuration validation failed", 0, problems)
	}
	return nil
}
