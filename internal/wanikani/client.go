package wanikani

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.wanikani.com/v2"
	apiRevision    = "20170710"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client interfaces with the WaniKani v2 API
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryDelay func(attempt int) time.Duration
}

// NewClient creates a new WaniKani API client. An empty baseURL uses the public API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retryDelay: calculateRetryDelay,
	}
}

// ValidateToken checks if a token is valid by calling the user endpoint
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	var user User
	if err := c.get(ctx, c.baseURL+"/user", token, &user); err != nil {
		return err
	}
	return nil
}

// ListSubjects fetches one page of subjects. An empty pageURL requests the first
// page, filtered by updatedAfter when set; otherwise pageURL is followed as given
// (it already carries the original filters).
func (c *Client) ListSubjects(ctx context.Context, token string, updatedAfter *time.Time, pageURL string) (*SubjectCollection, error) {
	target := pageURL
	if target == "" {
		u, err := url.Parse(c.baseURL + "/subjects")
		if err != nil {
			return nil, fmt.Errorf("failed to parse URL: %w", err)
		}
		if updatedAfter != nil {
			q := u.Query()
			q.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339Nano))
			u.RawQuery = q.Encode()
		}
		target = u.String()
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay(attempt)):
			}
		}

		var page SubjectCollection
		lastErr = c.get(ctx, target, token, &page)
		if lastErr == nil {
			return &page, nil
		}

		// Only retry on rate limits or server errors
		if !IsRetryable(lastErr) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) get(ctx context.Context, target, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Wanikani-Revision", apiRevision)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidToken
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
