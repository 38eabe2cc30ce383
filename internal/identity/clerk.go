package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sercamembert/rudyrudy/config"
)

const defaultHTTPTimeout = 10 * time.Second

// ClerkProvider resolves identities against a Clerk-style backend API:
// session tokens are HS256 JWTs whose subject is the user id, and user
// records are fetched from /v1/users/{id} with a bearer secret key.
type ClerkProvider struct {
	baseURL   string
	secretKey string
	jwtSecret []byte
	client    *http.Client
}

// NewClerkProvider constructs a provider from config.
func NewClerkProvider(cfg config.IdentityConfig) (*ClerkProvider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("identity base url is required")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("identity secret key is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("identity jwt secret is required")
	}

	return &ClerkProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		jwtSecret: []byte(cfg.JWTSecret),
		client:    &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

// VerifySession validates the session JWT and returns its subject.
func (p *ClerkProvider) VerifySession(ctx context.Context, token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return p.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthenticated
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrUnauthenticated
	}
	return subject, nil
}

// clerkUser is the slice of the provider's user payload we care about.
type clerkUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PhoneNumbers []struct {
		PhoneNumber string `json:"phone_number"`
	} `json:"phone_numbers"`
}

// User fetches the provider's user record by id.
func (p *ClerkProvider) User(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrUnauthenticated
	}

	url := fmt.Sprintf("%s/v1/users/%s", p.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return User{}, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return User{}, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var payload clerkUser
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, fmt.Errorf("decode identity response: %w", err)
	}

	return payload.toUser(), nil
}

func (c clerkUser) toUser() User {
	user := User{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		ImageURL:  c.ImageURL,
	}

	// Only the primary address counts. A user without a resolvable primary
	// email has no email, and profile submission rejects them downstream.
	for _, email := range c.EmailAddresses {
		if email.ID == c.PrimaryEmailAddressID {
			user.Email = email.EmailAddress
			break
		}
	}

	for _, phone := range c.PhoneNumbers {
		user.PhoneNumbers = append(user.PhoneNumbers, phone.PhoneNumber)
	}

	return user
}
