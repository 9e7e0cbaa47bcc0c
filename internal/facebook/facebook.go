// Package facebook posts captions to a Facebook Page feed via the Graph API.
package facebook

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

// DefaultAPIVersion is the Graph API version used when none is configured.
const DefaultAPIVersion = "v21.0"

// DefaultTimeout is the HTTP request timeout for feed posts.
const DefaultTimeout = 60 * time.Second

// GraphError is a non-2xx response from the Graph API.
type GraphError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *GraphError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[FB] %d: %s (type=%s, code=%d)", e.StatusCode, e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("[FB] HTTP %d", e.StatusCode)
}

// Config holds Page credentials.
type Config struct {
	PageID      string
	AccessToken string
	APIVersion  string
	BaseURL     string // overridable for tests; defaults to https://graph.facebook.com
	HTTPClient  *http.Client
}

// Client posts to one Page's feed.
type Client struct {
	pageID      string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a Graph API client for a Page.
func NewClient(cfg Config) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		pageID:      cfg.PageID,
		accessToken: cfg.AccessToken,
		apiVersion:  apiVersion,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
	}
}

// PostToFeed publishes a message (with an optional link) to the Page feed
// and returns the created post ID.
func (c *Client) PostToFeed(ctx context.Context, message, link string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", c.accessToken)
	if link != "" {
		form.Set("link", link)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/feed", c.baseURL, c.apiVersion, c.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("feed request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read feed response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		graphErr := &GraphError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil {
			graphErr.Message = envelope.Error.Message
			graphErr.Type = envelope.Error.Type
			graphErr.Code = envelope.Error.Code
		}
		return "", graphErr
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode feed response: %w", err)
	}
	return created.ID, nil
}
