// Package client is the HTTP client behind sentinelctl. It speaks the
// engine's identity headers and stable error codes.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/we-ne/sentinel/internal/models"
)

// Identity carries the credentials attached to every request. Token wins
// over AdminID when both are set, mirroring the server-side resolver.
type Identity struct {
	Token   string
	AdminID string
	Role    string
}

// Client talks to one sentinel engine.
type Client struct {
	baseURL  string
	identity Identity
	client   *http.Client
}

func New(baseURL string, identity Identity) *Client {
	return &Client{
		baseURL:  baseURL,
		identity: identity,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx engine response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.identity.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.identity.Token)
	}
	if c.identity.AdminID != "" {
		req.Header.Set("X-Admin-Id", c.identity.AdminID)
	}
	if c.identity.Role != "" {
		req.Header.Set("X-Admin-Role", c.identity.Role)
	}

	return c.client.Do(req)
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = "request failed"
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

func (c *Client) post(path string, body, out interface{}) error {
	resp, err := c.doRequest(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// FreezeStatus fetches the security dashboard.
func (c *Client) FreezeStatus() (*models.FreezeStatusResponse, error) {
	var out models.FreezeStatusResponse
	if err := c.get("/admin/security/freeze-status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs fetches ledger entries, newest first.
func (c *Client) Logs(category string, limit int) (*models.LogsResponse, error) {
	path := fmt.Sprintf("/admin/security/logs?limit=%d", limit)
	if category != "" {
		path += "&category=" + category
	}
	var out models.LogsResponse
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLedger asks the engine to re-walk its hash chain.
func (c *Client) VerifyLedger() (map[string]any, error) {
	var out map[string]any
	if err := c.get("/admin/security/ledger/verify", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reports fetches report obligations.
func (c *Client) Reports(status string, limit int) (*models.ReportsResponse, error) {
	path := fmt.Sprintf("/admin/security/report-obligations?limit=%d", limit)
	if status != "" {
		path += "&status=" + status
	}
	var out models.ReportsResponse
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Proposals fetches all governance proposals.
func (c *Client) Proposals() ([]*models.ProposalView, error) {
	var out struct {
		Items []*models.ProposalView `json:"items"`
	}
	if err := c.get("/admin/security/proposals", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Govern submits a governed action request or approval to the given
// endpoint path.
func (c *Client) Govern(path string, req *models.GovernRequest) (*models.GovernanceResponse, error) {
	var out models.GovernanceResponse
	if err := c.post(path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MintToken asks the engine for an operator JWT.
func (c *Client) MintToken(req *models.TokenRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.post("/admin/security/token", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
