// Package panggil provides a typed, resilient HTTP client for talking to
// JSON APIs. It layers a request pipeline around the standard net/http
// Client:
//
//   - Authentication injection with a pluggable credential provider
//   - Automatic token refresh, deduplicated so at most one refresh network
//     call is ever in flight, with replay of the unauthorized request
//   - Retry with exponential backoff and bounded jitter
//   - Response schema validation on decoded JSON bodies
//   - A closed error taxonomy: every failure surfaces as one *AppError
//   - Structured per-attempt log events, Prometheus metrics and a
//     reference-counted busy indicator
//
// Basic usage:
//
//	client := panggil.New(
//		panggil.WithBaseURL("https://api.example.com"),
//		panggil.WithMaxRetries(2),
//	)
//
//	var widget struct {
//		ID   int    `json:"id"`
//		Name string `json:"name"`
//	}
//	_, err := client.GetPublic(ctx, "/widgets/7", &widget)
//
// Authenticated calls resolve a bearer token through the configured
// CredentialProvider; a 401 triggers one refresh-and-replay cycle before the
// unauthorized handler runs. Defaults (timeout, retry budget, backoff base,
// locale, client header) come from PANGGIL_-prefixed environment variables
// with silent fallback to built-ins.
//
// The Client is safe for concurrent use.
package panggil
