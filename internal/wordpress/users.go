package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// user is the subset of the WordPress user resource used for matching.
type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ResolveAuthor maps an author cell (numeric ID, display name or slug) to a
// user ID. Returns 0 when the token is empty or no user matches; an
// unresolvable author drops silently so the site default applies.
func (c *Client) ResolveAuthor(ctx context.Context, token string) int {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0
	}
	if id, ok := parseNumericID(token); ok {
		return id
	}

	key := strings.ToLower(token)
	if id, ok := c.userCache[key]; ok {
		return id
	}

	params := url.Values{}
	params.Set("search", token)
	params.Set("per_page", "100")
	var users []user
	if err := c.do(ctx, http.MethodGet, "users", params, nil, &users); err != nil {
		fmt.Printf("[WP user search] %q: %v\n", token, err)
		return 0
	}

	for _, u := range users {
		if key == strings.ToLower(strings.TrimSpace(u.Name)) || key == strings.ToLower(strings.TrimSpace(u.Slug)) {
			c.userCache[key] = u.ID
			return u.ID
		}
	}
	return 0
}
