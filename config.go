package panggil

import (
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PANGGIL_"

// Config holds the environment-derived defaults consumed by every client.
// It carries no behavior; loading never fails and invalid overrides fall
// back silently to the built-in values.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	Locale       string
	ClientHeader string
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxRetries:   0,
		RetryDelay:   500 * time.Millisecond,
		Locale:       "en-US",
		ClientHeader: "web",
	}
}

// LoadConfig reads overrides from PANGGIL_-prefixed environment variables:
//
//	PANGGIL_TIMEOUT_MS, PANGGIL_RETRY_ATTEMPTS, PANGGIL_RETRY_DELAY_MS,
//	PANGGIL_LOCALE, PANGGIL_CLIENT_HEADER
//
// Empty, malformed or negative numeric overrides keep the built-in default
// for that field.
func LoadConfig() Config {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return cfg
	}

	if ms, ok := positiveInt(k.String("timeout_ms")); ok {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n, ok := nonNegativeInt(k.String("retry_attempts")); ok {
		cfg.MaxRetries = n
	}
	if ms, ok := nonNegativeInt(k.String("retry_delay_ms")); ok {
		cfg.RetryDelay = time.Duration(ms) * time.Millisecond
	}
	if locale := strings.TrimSpace(k.String("locale")); locale != "" {
		cfg.Locale = locale
	}
	if header := strings.TrimSpace(k.String("client_header")); header != "" {
		cfg.ClientHeader = header
	}

	return cfg
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func nonNegativeInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
