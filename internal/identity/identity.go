package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no identity can be resolved for a
// session token.
var ErrUnauthenticated = errors.New("unauthenticated")

// User is the identity provider's record for an authenticated user. All
// fields are read-only snapshots owned by the provider.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumbers []string
	ImageURL     string
}

// FullName derives the display name: first and last when both are present,
// first alone otherwise, empty string when the provider has neither.
func (u User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// PhoneNumber returns the first registered phone number, or empty string.
func (u User) PhoneNumber() string {
	if len(u.PhoneNumbers) > 0 {
		return u.PhoneNumbers[0]
	}
	return ""
}

// Provider resolves authenticated callers against the external identity
// provider. Session issuance, OAuth, and verification flows stay on the
// provider's side; this interface only reads the outcome.
type Provider interface {
	// VerifySession validates a session token and returns the user id it
	// was issued for. Returns ErrUnauthenticated for missing, expired, or
	// tampered tokens.
	VerifySession(ctx context.Context, token string) (string, error)

	// User fetches the provider's user record by id.
	User(ctx context.Context, id string) (User, error)
}

// CurrentUser resolves the caller behind a session token. It collapses any
// verification or lookup failure into ErrUnauthenticated so callers can
// treat "no identity" uniformly.
func CurrentUser(ctx context.Context, p Provider, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthenticated
	}
	id, err := p.VerifySession(ctx, token)
	if err != nil {
		return User{}, ErrUnauthenticated
	}
	user, err := p.User(ctx, id)
	if err != nil {
		return User{}, ErrUnauthenticated
	}
	return user, nil
}
