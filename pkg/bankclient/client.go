/**
 * @description
 * This package provides a client for the SBF core-banking API. It encapsulates
 * the two upstream capabilities the dashboard needs: fetching the user snapshot
 * and submitting an internal transfer. Snapshot fetches are retried with a
 * bounded exponential backoff; transfer submissions are never retried here —
 * a failed attempt is terminal and the error is surfaced to the caller.
 *
 * @dependencies
 * - bytes, context, encoding/json, net/http, time: Standard Go libraries.
 */
package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sbf/dashboard-service/internal/domain"
)

// Retry policy for snapshot fetches. Mirrors the dashboard frontend's query
// configuration: 3 retries, 1s * 2^n delay capped at 30s.
const (
	defaultMaxRetries   = 3
	defaultRetryBase    = time.Second
	defaultRetryCeiling = 30 * time.Second
)

// APIError represents a non-2xx response from the core-banking API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bank api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bank api error (status %d)", e.StatusCode)
}

// IsNotFound reports whether the upstream answered 404.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsServerError reports whether the upstream answered 5xx.
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 }

// Client is a client for the core-banking API.
type Client struct {
	BaseURL    string
	Username   string
	HTTPClient *http.Client

	// Retry knobs for FetchUserSnapshot. Tests shrink these.
	MaxRetries   int
	RetryBase    time.Duration
	RetryCeiling time.Duration
}

// NewClient creates a new core-banking API client scoped to one customer.
func NewClient(baseURL, username string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxRetries:   defaultMaxRetries,
		RetryBase:    defaultRetryBase,
		RetryCeiling: defaultRetryCeiling,
	}
}

// FetchUserSnapshot fetches the full user/account snapshot. Transport failures
// and 5xx responses are retried with exponential backoff; 404 and other 4xx
// responses are terminal.
func (c *Client) FetchUserSnapshot(ctx context.Context) (*domain.User, error) {
	url := c.BaseURL + "/accounts/user/" + c.Username

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			log.Printf("level=warn component=bank_client op=fetch_snapshot attempt=%d delay=%s err=%v", attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		user, err := c.fetchOnce(ctx, url)
		if err == nil {
			return user, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsServerError() {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute snapshot request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: extractMessage(bodyBytes)}
	}

	var user domain.User
	if err := json.Unmarshal(bodyBytes, &user); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot response: %w", err)
	}
	return &user, nil
}

// SubmitTransfer POSTs a validated transfer request upstream. Any failure is
// terminal for the attempt; the caller decides what to show the user.
func (c *Client) SubmitTransfer(ctx context.Context, transfer domain.TransferRequest) (*domain.TransferResponse, error) {
	body, err := json.Marshal(transfer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	url := c.BaseURL + "/transactions/transfer/" + c.Username
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute transfer request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractMessage(bodyBytes)}
		log.Printf("level=warn component=bank_client op=submit_transfer status=%d msg=%q", resp.StatusCode, apiErr.Message)
		return nil, apiErr
	}

	var transferResp domain.TransferResponse
	if err := json.Unmarshal(bodyBytes, &transferResp); err != nil {
		return nil, fmt.Errorf("failed to decode transfer response: %w", err)
	}
	return &transferResp, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.RetryBase << uint(attempt-1)
	if delay > c.RetryCeiling || delay <= 0 {
		return c.RetryCeiling
	}
	return delay
}

// extractMessage pulls the human-readable message out of an upstream error
// body, tolerating bodies that are not JSON at all.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
