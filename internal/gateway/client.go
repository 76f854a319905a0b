package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the external payment gateway's REST API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiToken string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// StatusSuccess is the only gateway status that counts as a settled payment.
const StatusSuccess = "success"

type PaymentStatus struct {
	Reference     string  `json:"reference"`
	Status        string  `json:"status"`
	SettledAmount *string `json:"settled_amount,omitempty"`
	Currency      *string `json:"currency,omitempty"`
}

// GetPayment fetches the gateway's record for a payment reference. Transport
// failures, non-2xx responses and malformed bodies all come back as errors;
// the caller decides what a failed lookup means.
func (c *Client) GetPayment(ctx context.Context, reference string) (*PaymentStatus, error) {
	u := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payment gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var status PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return &status, nil
}
