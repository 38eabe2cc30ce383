// Package client is a programmatic client for the onboarding API. It carries
// the client-side pieces of the flow: the profile form state machine, the
// avatar uploader, and the sign-in email gate.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sercamembert/rudyrudy/types"
)

const defaultTimeout = 30 * time.Second

// Client calls the onboarding API on behalf of an authenticated session.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// New constructs a Client for the given API base URL and session token.
func New(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		sessionToken: sessionToken,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

// SubmitProfile posts the form payload to the profile submission action and
// returns the resulting ActionState. Non-2xx responses still carry an
// ActionState body and are not treated as transport errors.
func (c *Client) SubmitProfile(ctx context.Context, form types.ProfileForm) (types.ActionState, error) {
	values := url.Values{}
	values.Set("username", form.Username)
	if form.Bio != "" {
		values.Set("bio", form.Bio)
	}
	if form.ProfileImage != "" {
		values.Set("profileImage", form.ProfileImage)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profile", strings.NewReader(values.Encode()))
	if err != nil {
		return types.ActionState{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.ActionState{}, err
	}
	defer resp.Body.Close()

	var state types.ActionState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return types.ActionState{}, fmt.Errorf("decode submission response: %w", err)
	}
	return state, nil
}

// UploadAvatar uploads the file as a multipart form and returns the stored
// object's public URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profile/avatar", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			return "", errors.New(payload.Error)
		}
		return "", fmt.Errorf("avatar upload returned status %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return payload.URL, nil
}

// Profile fetches the caller's persisted profile.
func (c *Client) Profile(ctx context.Context) (types.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/profile/me", nil)
	if err != nil {
		return types.User{}, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.User{}, fmt.Errorf("profile fetch returned status %d", resp.StatusCode)
	}

	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return types.User{}, fmt.Errorf("decode profile response: %w", err)
	}
	return user, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}
}
