// Package client is a Go client for the memorial API. It carries the
// visitor-side session state: an explicit signed-in/signed-out lifecycle for
// the admin review surface, a live candle counter fed by the server's event
// stream, and an optimistic heart tally with rollback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrInvalidCredentials is returned for any rejected sign-in.
	ErrInvalidCredentials = errors.New("client: invalid credentials")
	// ErrUnauthorized indicates a review call without a valid session.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNotFound indicates the server knows no record with that identity.
	ErrNotFound = errors.New("client: not found")
	// ErrPaymentUnverified indicates the provider did not confirm the charge.
	ErrPaymentUnverified = errors.New("client: payment unverified")
)

// Client talks to one memorial API server. The zero session state is
// unauthenticated; SignIn and SignOut transition it.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

// New constructs a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		// Stream requests stay open indefinitely; cancellation comes from
		// the request context instead of a client timeout.
		streamClient: &http.Client{},
	}
}

// Tribute mirrors one tribute row as served by the API.
type Tribute struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Location  string    `json:"location"`
	Hearts    int64     `json:"hearts"`
}

// SignIn exchanges the email and password pair for a session token. Any
// failure leaves the client unauthenticated.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var response struct {
		AccessToken string `json:"access_token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/login",
		map[string]string{"email": email, "password": password}, &response)
	if errors.Is(err, ErrUnauthorized) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = response.AccessToken
	c.mu.Unlock()
	return nil
}

// SignOut discards the session credential, returning to unauthenticated.
func (c *Client) SignOut() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// Authenticated reports whether a session credential is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// CandleCount fetches the current candle tally.
func (c *Client) CandleCount(ctx context.Context) (int64, error) {
	var response struct {
		Count int64 `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/candles/count", nil, &response); err != nil {
		return 0, err
	}
	return response.Count, nil
}

// LightCandle submits a new candle.
func (c *Client) LightCandle(ctx context.Context, name, message string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/candles",
		map[string]string{"name": name, "message": message}, nil)
}

// Tributes fetches the approved tribute wall, newest first.
func (c *Client) Tributes(ctx context.Context) ([]Tribute, error) {
	var response struct {
		Tributes []Tribute `json:"tributes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/tributes", nil, &response); err != nil {
		return nil, err
	}
	return response.Tributes, nil
}

// SubmitTribute submits a tribute for review.
func (c *Client) SubmitTribute(ctx context.Context, name, message, location string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/tributes",
		map[string]string{"name": name, "message": message, "location": location}, nil)
}

// AddHeart asks the server for one atomic heart increment and returns the
// tally after it.
func (c *Client) AddHeart(ctx context.Context, tributeID int64) (int64, error) {
	var response struct {
		Hearts int64 `json:"hearts"`
	}
	path := "/api/tributes/" + strconv.FormatInt(tributeID, 10) + "/hearts"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &response); err != nil {
		return 0, err
	}
	return response.Hearts, nil
}

// PendingTributes fetches the review queue. Requires a session.
func (c *Client) PendingTributes(ctx context.Context) ([]Tribute, error) {
	var response struct {
		Tributes []Tribute `json:"tributes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/tributes/pending", nil, &response); err != nil {
		return nil, err
	}
	return response.Tributes, nil
}

// ApproveTribute makes one pending tribute publicly visible. Requires a session.
func (c *Client) ApproveTribute(ctx context.Context, tributeID int64) error {
	path := "/api/admin/tributes/" + strconv.FormatInt(tributeID, 10) + "/approve"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// RejectTribute permanently deletes one tribute. Requires a session.
func (c *Client) RejectTribute(ctx context.Context, tributeID int64) error {
	path := "/api/admin/tributes/" + strconv.FormatInt(tributeID, 10)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.accessToken != "" {
		request.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	c.mu.RUnlock()

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
	case response.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case response.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case response.StatusCode == http.StatusPaymentRequired:
		return ErrPaymentUnverified
	default:
		return fmt.Errorf("client: %s %s: unexpected status %d", method, path, response.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func (c *Client) openCandleStream(ctx context.Context) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/candles/stream", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("client: build stream request: %w", err)
	}
	request.Header.Set("Accept", "text/event-stream")

	response, err := c.streamClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("client: open stream: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf("client: unexpected stream status %d", response.StatusCode)
	}
	return response, nil
}
