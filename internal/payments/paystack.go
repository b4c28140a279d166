package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIURL    = "https://api.paystack.co"
	defaultTimeout   = 10 * time.Second
	successfulCharge = "success"
)

var (
	// ErrMissingSecretKey indicates the client was built without credentials.
	ErrMissingSecretKey = errors.New("payments: secret key is required")
	// ErrMissingReference indicates a verification call without a transaction reference.
	ErrMissingReference = errors.New("payments: reference is required")
	// ErrChargeNotVerified indicates the provider did not confirm the reference
	// as a successful charge. Unknown references and failed or abandoned
	// charges all map here.
	ErrChargeNotVerified = errors.New("payments: charge not verified")
)

// ClientConfig configures the Paystack verification client.
type ClientConfig struct {
	SecretKey  string
	APIURL     string
	HTTPClient *http.Client
}

// Client verifies completed Paystack transactions. The popup checkout runs in
// the visitor's browser; this client only confirms, server side, that a claimed
// reference corresponds to a real successful charge.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs a Paystack verification client.
func NewClient(cfg ClientConfig) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, ErrMissingSecretKey
	}
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		secretKey:  secret,
		apiURL:     apiURL,
		httpClient: httpClient,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// VerifyTransaction confirms a charge with the provider and returns the
// settled amount in minor units (pesewas/kobo) together with its currency.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (int64, string, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return 0, "", ErrMissingReference
	}

	endpoint := c.apiURL + "/transaction/verify/" + url.PathEscape(ref)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return 0, "", fmt.Errorf("payments: build verify request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.secretKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, "", fmt.Errorf("payments: verify request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound || response.StatusCode == http.StatusBadRequest {
		return 0, "", fmt.Errorf("%w: reference %s unknown to provider", ErrChargeNotVerified, ref)
	}
	if response.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("payments: unexpected verify status %d", response.StatusCode)
	}

	var payload verifyResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return 0, "", fmt.Errorf("payments: decode verify response: %w", err)
	}
	if !payload.Status || payload.Data.Status != successfulCharge {
		return 0, "", fmt.Errorf("%w: provider status %q", ErrChargeNotVerified, payload.Data.Status)
	}
	return payload.Data.Amount, payload.Data.Currency, nil
}
