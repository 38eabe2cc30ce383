package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sercamembert/rudyrudy/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func mintSessionToken(t *testing.T, subject, secret string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestProvider(t *testing.T, handler http.Handler) *ClerkProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewClerkProvider(config.IdentityConfig{
		BaseURL:   server.URL,
		SecretKey: "sk_test_123",
		JWTSecret: testJWTSecret,
	})
	require.NoError(t, err)
	return provider
}

func clerkUserPayload() map[string]any {
	return map[string]any{
		"id":                       "user_2abc",
		"first_name":               "Jan",
		"last_name":                "Kowalski",
		"image_url":                "https://img.clerk.com/user_2abc.png",
		"primary_email_address_id": "em_2",
		"email_addresses": []map[string]any{
			{"id": "em_1", "email_address": "old@example.com"},
			{"id": "em_2", "email_address": "jan@example.com"},
		},
		"phone_numbers": []map[string]any{
			{"phone_number": "+48123456789"},
			{"phone_number": "+48987654321"},
		},
	}
}

func TestVerifySession(t *testing.T) {
	provider := newTestProvider(t, http.NotFoundHandler())

	t.Run("valid token", func(t *testing.T) {
		token := mintSessionToken(t, "user_2abc", testJWTSecret, time.Hour)
		subject, err := provider.VerifySession(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "user_2abc", subject)
	})

	t.Run("expired token", func(t *testing.T) {
		token := mintSessionToken(t, "user_2abc", testJWTSecret, -time.Minute)
		_, err := provider.VerifySession(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := mintSessionToken(t, "user_2abc", "other-secret", time.Hour)
		_, err := provider.VerifySession(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := provider.VerifySession(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := mintSessionToken(t, "", testJWTSecret, time.Hour)
		_, err := provider.VerifySession(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestUserLookup(t *testing.T) {
	var gotAuth string
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/users/user_2abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(clerkUserPayload())
	}))

	user, err := provider.User(context.Background(), "user_2abc")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "user_2abc", user.ID)
	assert.Equal(t, "Jan", user.FirstName)
	assert.Equal(t, "Kowalski", user.LastName)
	assert.Equal(t, "jan@example.com", user.Email, "primary address wins over first listed")
	assert.Equal(t, []string{"+48123456789", "+48987654321"}, user.PhoneNumbers)
	assert.Equal(t, "https://img.clerk.com/user_2abc.png", user.ImageURL)
}

func TestUserLookupUnresolvedPrimaryEmail(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := clerkUserPayload()
		payload["primary_email_address_id"] = "em_gone"
		_ = json.NewEncoder(w).Encode(payload)
	}))

	user, err := provider.User(context.Background(), "user_2abc")
	require.NoError(t, err)

	assert.Empty(t, user.Email, "no listed address substitutes for a missing primary")
}

func TestUserLookupNotFound(t *testing.T) {
	provider := newTestProvider(t, http.NotFoundHandler())

	_, err := provider.User(context.Background(), "user_missing")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFullNameDerivation(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"both names", User{FirstName: "Jan", LastName: "Kowalski"}, "Jan Kowalski"},
		{"first only", User{FirstName: "Jan"}, "Jan"},
		{"last only", User{LastName: "Kowalski"}, ""},
		{"neither", User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.FullName())
		})
	}
}

func TestPhoneNumber(t *testing.T) {
	assert.Equal(t, "", User{}.PhoneNumber())
	assert.Equal(t, "+48123456789", User{PhoneNumbers: []string{"+48123456789", "+48987654321"}}.PhoneNumber())
}

func TestCurrentUser(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(clerkUserPayload())
	}))

	t.Run("empty token", func(t *testing.T) {
		_, err := CurrentUser(context.Background(), provider, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("resolves user", func(t *testing.T) {
		token := mintSessionToken(t, "user_2abc", testJWTSecret, time.Hour)
		user, err := CurrentUser(context.Background(), provider, token)
		require.NoError(t, err)
		assert.Equal(t, "user_2abc", user.ID)
	})
}
