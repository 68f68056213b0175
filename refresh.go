package panggil

import (
	"context"

	"github.com/adyatma-labs/panggil/internal/flight"
)

const refreshKey = "token-refresh"

// RefreshCoordinator guarantees that at most one token-refresh call is in
// flight at a time, no matter how many concurrent requests trigger it.
// Callers arriving while a refresh is pending share its settlement; the
// pending marker is cleared before the settlement is delivered, so a later
// unauthorized error starts a fresh refresh instead of replaying a stale
// one. Each Client owns its own coordinator, so tests can reset state by
// constructing a new one.
type RefreshCoordinator struct {
	group *flight.Group
}

// NewRefreshCoordinator returns a coordinator with no pending refresh.
func NewRefreshCoordinator() *RefreshCoordinator {
	return &RefreshCoordinator{group: flight.New()}
}

// Attempt runs (or joins) the single in-flight refresh. With no provider
// configured it resolves immediately to "no token". A failing refresh
// propagates the same error to every concurrent waiter.
func (rc *RefreshCoordinator) Attempt(ctx context.Context, creds CredentialProvider) (string, error) {
	if creds == nil {
		return "", nil
	}

	v, err := rc.group.Do(ctx, refreshKey, func() (any, error) {
		return creds.RefreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	return token, nil
}

// Pending reports whether a refresh is currently in flight.
func (rc *RefreshCoordinator) Pending() bool {
	return rc.group.Pending(refreshKey)
}
