package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Taxonomies this tool resolves terms for.
const (
	TaxonomyCategories = "categories"
	TaxonomyTags       = "tags"
)

type termKey struct {
	taxonomy string
	token    string
}

// term is the subset of the WordPress term resource used for matching.
type term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ResolveTermIDs maps a comma-separated token string (names, slugs or
// numeric IDs; ASCII and full-width commas both accepted) to term IDs for
// the given taxonomy. Numeric tokens pass through unvalidated. Name tokens
// are matched case-insensitively on name or slug; missing terms are created
// when auto-create is enabled. Unresolvable tokens are dropped, never an
// error. Duplicates are removed preserving first occurrence.
func (c *Client) ResolveTermIDs(ctx context.Context, tokenString, taxonomy string) []int {
	if tokenString == "" {
		return nil
	}

	var ids []int
	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	tokenString = strings.ReplaceAll(tokenString, "，", ",")
	for _, token := range strings.Split(tokenString, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if id, ok := parseNumericID(token); ok {
			add(id)
			continue
		}
		if id, ok := c.searchTerm(ctx, taxonomy, token); ok {
			add(id)
			continue
		}
		if id, ok := c.createTerm(ctx, taxonomy, token); ok {
			add(id)
		}
	}
	return ids
}

// searchTerm finds a term by case-insensitive exact match on name or slug,
// consulting the run-lifetime cache first.
func (c *Client) searchTerm(ctx context.Context, taxonomy, token string) (int, bool) {
	key := termKey{taxonomy: taxonomy, token: strings.ToLower(strings.TrimSpace(token))}
	if id, ok := c.termCache[key]; ok {
		return id, true
	}

	params := url.Values{}
	params.Set("search", token)
	params.Set("per_page", "100")
	var terms []term
	if err := c.do(ctx, http.MethodGet, taxonomy, params, nil, &terms); err != nil {
		fmt.Printf("[WP term search] %s %q: %v\n", taxonomy, token, err)
		return 0, false
	}

	for _, t := range terms {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		slug := strings.ToLower(strings.TrimSpace(t.Slug))
		if key.token == name || key.token == slug {
			c.termCache[key] = t.ID
			return t.ID, true
		}
	}
	return 0, false
}

// createTerm creates a missing term when auto-create is enabled. Creation
// failures drop the token rather than aborting the row.
func (c *Client) createTerm(ctx context.Context, taxonomy, name string) (int, bool) {
	if !c.autoCreateTerms {
		return 0, false
	}
	var created term
	if err := c.do(ctx, http.MethodPost, taxonomy, nil, map[string]string{"name": name}, &created); err != nil {
		fmt.Printf("[WP term create] %s %q: %v\n", taxonomy, name, err)
		return 0, false
	}
	c.termCache[termKey{taxonomy: taxonomy, token: strings.ToLower(strings.TrimSpace(name))}] = created.ID
	return created.ID, true
}

// parseNumericID reports whether token is purely ASCII digits.
func parseNumericID(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	id := 0
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
		id = id*10 + int(r-'0')
	}
	return id, true
}
