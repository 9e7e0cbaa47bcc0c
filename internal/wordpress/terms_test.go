package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// termServer fakes the categories endpoint: "News" exists with ID 5, and
// creation assigns ID 99 to whatever name is posted.
func termServer(t *testing.T, searches, creates *int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wp/v2/categories", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			*searches++
			if r.URL.Query().Get("search") == "News" {
				_ = json.NewEncoder(w).Encode([]term{{ID: 5, Name: "News", Slug: "news"}})
				return
			}
			_, _ = w.Write([]byte("[]"))
		case http.MethodPost:
			*creates++
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(term{ID: 99, Name: body["name"]})
		}
	})
}

func TestResolveTermIDs_MixedTokens(t *testing.T) {
	var searches, creates int
	client, _ := newTestClient(t, termServer(t, &searches, &creates))

	ids := client.ResolveTermIDs(context.Background(), "10, News, 新闻", TaxonomyCategories)
	assert.Equal(t, []int{10, 5, 99}, ids)
	assert.Equal(t, 1, creates)

	// Second resolution hits the cache, not the network.
	searchesBefore := searches
	ids = client.ResolveTermIDs(context.Background(), "News, 新闻", TaxonomyCategories)
	assert.Equal(t, []int{5, 99}, ids)
	assert.Equal(t, searchesBefore, searches)
	assert.Equal(t, 1, creates)
}

func TestResolveTermIDs_FullWidthComma(t *testing.T) {
	var searches, creates int
	client, _ := newTestClient(t, termServer(t, &searches, &creates))

	ids := client.ResolveTermIDs(context.Background(), "3，7", TaxonomyCategories)
	assert.Equal(t, []int{3, 7}, ids)
	assert.Zero(t, searches)
}

func TestResolveTermIDs_DeduplicatesPreservingOrder(t *testing.T) {
	var searches, creates int
	client, _ := newTestClient(t, termServer(t, &searches, &creates))

	ids := client.ResolveTermIDs(context.Background(), "10, News, 10, news", TaxonomyCategories)
	assert.Equal(t, []int{10, 5}, ids)
}

func TestResolveTermIDs_AutoCreateDisabledDropsToken(t *testing.T) {
	var searches, creates int
	server := termServer(t, &searches, &creates)
	client, _ := newTestClient(t, server)
	client.autoCreateTerms = false

	ids := client.ResolveTermIDs(context.Background(), "新闻, 10", TaxonomyCategories)
	assert.Equal(t, []int{10}, ids)
	assert.Zero(t, creates)
}

func TestResolveTermIDs_CreateFailureDropsToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("[]"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))

	ids := client.ResolveTermIDs(context.Background(), "blocked, 4", TaxonomyCategories)
	assert.Equal(t, []int{4}, ids)
}

func TestResolveTermIDs_EmptyAndBlankTokens(t *testing.T) {
	var searches, creates int
	client, _ := newTestClient(t, termServer(t, &searches, &creates))

	assert.Nil(t, client.ResolveTermIDs(context.Background(), "", TaxonomyCategories))
	assert.Equal(t, []int{2}, client.ResolveTermIDs(context.Background(), " , 2, ", TaxonomyCategories))
}

func TestResolveTermIDs_MatchesSlugCaseInsensitively(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]term{{ID: 8, Name: "Local News", Slug: "local-news"}})
	}))

	ids := client.ResolveTermIDs(context.Background(), "LOCAL-NEWS", TaxonomyCategories)
	assert.Equal(t, []int{8}, ids)
}
