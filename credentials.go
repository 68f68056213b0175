package panggil

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// CredentialProvider supplies the current access token, performs the refresh
// network call, and reacts to unrecoverable authorization failures.
// Implementations must be safe for concurrent use.
type CredentialProvider interface {
	// AccessToken returns the current token, or "" when none is available.
	AccessToken() string
	// RefreshAccessToken obtains a new token. Returning "" with a nil error
	// means the refresh completed but produced no usable token.
	RefreshAccessToken(ctx context.Context) (string, error)
	// OnUnauthorized is invoked when authorization cannot be recovered,
	// typically to navigate to a sign-in route.
	OnUnauthorized()
}

// TokenFallback is a secondary persisted-token lookup consulted when the
// provider has no in-memory token. Errors are swallowed as "no token".
type TokenFallback func() (string, error)

// StaticProvider holds a fixed token with no refresh capability.
type StaticProvider struct {
	Token string
}

func (p *StaticProvider) AccessToken() string { return p.Token }

func (p *StaticProvider) RefreshAccessToken(context.Context) (string, error) {
	return "", nil
}

func (p *StaticProvider) OnUnauthorized() {}

// OAuth2Provider adapts an oauth2.TokenSource to the CredentialProvider
// interface. The source's own refresh logic runs inside RefreshAccessToken;
// the last obtained token is served from memory in between.
type OAuth2Provider struct {
	Source oauth2.TokenSource
	// Unauthorized, if set, is called on unrecoverable authorization failure.
	Unauthorized func()

	mu      sync.RWMutex
	current string
}

func (p *OAuth2Provider) AccessToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *OAuth2Provider) RefreshAccessToken(ctx context.Context) (string, error) {
	tok, err := p.Source.Token()
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.current = tok.AccessToken
	p.mu.Unlock()
	return tok.AccessToken, nil
}

func (p *OAuth2Provider) OnUnauthorized() {
	if p.Unauthorized != nil {
		p.Unauthorized()
	}
}

// TokenExpiringWithin reports whether the JWT's exp claim falls inside the
// given window from now. Tokens that do not parse or carry no exp claim are
// reported as not expiring, since nothing can be concluded about them.
func TokenExpiringWithin(token string, window time.Duration) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) <= window
}

// ExpiryAwareProvider wraps another provider and treats a token whose exp
// claim has already passed as absent, so the engine refreshes instead of
// sending a request that is certain to come back 401.
type ExpiryAwareProvider struct {
	CredentialProvider
	// Leeway widens the expiry check to absorb clock skew.
	Leeway time.Duration
}

func (p *ExpiryAwareProvider) AccessToken() string {
	token := p.CredentialProvider.AccessToken()
	if token == "" {
		return ""
	}
	if TokenExpiringWithin(token, p.Leeway) {
		return ""
	}
	return token
}
