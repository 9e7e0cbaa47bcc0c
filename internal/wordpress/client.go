// Package wordpress is a minimal client for the WordPress REST API surface
// this tool consumes: posts, categories, tags, users and media, authenticated
// with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// Post statuses used by this tool.
const (
	StatusDraft   = "draft"
	StatusPublish = "publish"
)

// APIError represents a non-2xx response from the WordPress REST API.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[WP %s %s] %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Config holds connection settings for a WordPress site.
type Config struct {
	BaseURL         string // site root, without trailing slash
	Username        string
	AppPassword     string
	AutoCreateTerms bool
	HTTPClient      *http.Client
}

// Client talks to one WordPress site. Term and user lookups are cached for
// the lifetime of the client (one batch run).
type Client struct {
	baseURL         string
	username        string
	appPassword     string
	autoCreateTerms bool
	httpClient      *http.Client

	termCache map[termKey]int
	userCache map[string]int
}

// NewClient creates a client for the given site.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		username:        cfg.Username,
		appPassword:     cfg.AppPassword,
		autoCreateTerms: cfg.AutoCreateTerms,
		httpClient:      httpClient,
		termCache:       make(map[termKey]int),
		userCache:       make(map[string]int),
	}
}

// PostParams is the request payload for creating or updating a post.
type PostParams struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Status        string            `json:"status"`
	Categories    []int             `json:"categories,omitempty"`
	Tags          []int             `json:"tags,omitempty"`
	Slug          string            `json:"slug,omitempty"`
	Author        int               `json:"author,omitempty"`
	Date          string            `json:"date,omitempty"`
	FeaturedMedia int               `json:"featured_media,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// Post is the subset of the WordPress post resource this tool reads.
type Post struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
	Slug   string `json:"slug"`
}

// do issues an authenticated request against /wp-json/wp/v2/<endpoint> and
// decodes the JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	u := fmt.Sprintf("%s/wp-json/wp/v2/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// GetPost fetches a post by ID.
func (c *Client) GetPost(ctx context.Context, id int) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("posts/%d", id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a new post.
func (c *Client) CreatePost(ctx context.Context, params PostParams) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "posts", nil, params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost updates an existing post. A non-existent ID is an error; the
// remote site is the source of truth, so the caller must not fall back to a
// create.
func (c *Client) UpdatePost(ctx context.Context, id int, params PostParams) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("posts/%d", id), nil, params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// FindPostBySlug returns the post with the given slug in any status, or nil
// when no post matches.
func (c *Client) FindPostBySlug(ctx context.Context, slug string) (*Post, error) {
	params := url.Values{}
	params.Set("slug", slug)
	params.Set("status", "any")
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "posts", params, nil, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}
