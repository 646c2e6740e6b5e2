package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// BaseURL is the public Notion REST endpoint.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is sent as the Notion-Version header.
	APIVersion = "2022-06-28"

	maxPageSize = 100
	retryDelay  = 2 * time.Second
)

// Client is a minimal Notion API client covering the two read calls the blog needs.
type Client struct {
	BaseURL    string
	Token      string
	Version    string
	HTTPClient *http.Client

	// MaxRetries bounds retries on rate-limited (429) responses.
	MaxRetries int
}

// NewClient creates a client for the public Notion API.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    BaseURL,
		Token:      token,
		Version:    APIVersion,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 2,
	}
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion api error (%d): %s: %s", e.Status, e.Code, e.Message)
}

// NormalizeID validates a page or block id and returns its dashed form.
func NormalizeID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid notion id %q: %w", id, err)
	}
	return parsed.String(), nil
}

// QueryDatabase runs one database query. Only the first page of results is
// returned; the cursor is not followed.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery) (*PageList, error) {
	if q.PageSize == 0 {
		q.PageSize = maxPageSize
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/databases/%s/query", c.BaseURL, url.PathEscape(databaseID))

	var result PageList
	if err := c.do(ctx, http.MethodPost, endpoint, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListBlockChildren lists the direct children of a block or page.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) (*BlockList, error) {
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(maxPageSize))

	endpoint := fmt.Sprintf("%s/blocks/%s/children?%s", c.BaseURL, url.PathEscape(blockID), params.Encode())

	var result BlockList
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	for attempt := 0; ; attempt++ {
		err := c.send(ctx, method, endpoint, body, out)
		if err == nil {
			return nil
		}

		rl, ok := err.(*rateLimited)
		if !ok {
			return err
		}
		if attempt >= c.MaxRetries {
			return rl.APIError
		}

		wait := rl.retryAfter
		if wait < 0 {
			wait = retryDelay * time.Duration(attempt+1)
		}
		log.Printf("  Notion rate limited, retry %d/%d in %s", attempt+1, c.MaxRetries, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type rateLimited struct {
	*APIError
	retryAfter time.Duration
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", c.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusTooManyRequests {
			wait := time.Duration(-1)
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				wait = time.Duration(secs) * time.Second
			}
			return &rateLimited{APIError: apiErr, retryAfter: wait}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = fmt.Sprintf("could not read body: %v", err)
		return apiErr
	}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(raw)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
