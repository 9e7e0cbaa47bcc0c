package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// newTestStore points a Store at a fake Sheets API server.
func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := NewStore(context.Background(), "sheet-1", "Posts",
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	store.sleep = func(time.Duration) {}
	return store
}

func valuesResponse(values [][]any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(&sheetsapi.ValueRange{Values: values})
	}
}

func TestReadAll_MapsColumnsByHeaderName(t *testing.T) {
	store := newTestStore(t, valuesResponse([][]any{
		{"Status", "raw", "TITLE", "post_id"},
		{"ready", "blob one", "Title one", "12"},
		{"done", "blob two"},
	}))

	rows, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "ready", rows[0].Status())
	assert.Equal(t, "blob one", rows[0].Get(ColRaw))
	assert.Equal(t, "Title one", rows[0].Get("Title"))
	assert.Equal(t, "12", rows[0].Get(ColPostID))

	// Missing trailing cells read as empty, not as an error.
	assert.Equal(t, 3, rows[1].Number)
	assert.Equal(t, "", rows[1].Get(ColTitle))
	assert.Equal(t, "", rows[1].Get(ColPostID))

	assert.True(t, store.HasColumn("TITLE"))
	assert.False(t, store.HasColumn(ColSlug))
}

func TestReadAll_EmptySheet(t *testing.T) {
	store := newTestStore(t, valuesResponse(nil))
	rows, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteColumns_TargetsOnlyNamedCells(t *testing.T) {
	var batch *sheetsapi.BatchUpdateValuesRequest
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			valuesResponse([][]any{{"status", "raw", "post_id", "wp_link", "last_synced"}})(w, r)
			return
		}
		require.True(t, strings.HasSuffix(r.URL.Path, ":batchUpdate"))
		batch = &sheetsapi.BatchUpdateValuesRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(batch))
		_ = json.NewEncoder(w).Encode(&sheetsapi.BatchUpdateValuesResponse{})
	}))

	_, err := store.ReadAll(context.Background())
	require.NoError(t, err)

	err = store.WriteColumns(context.Background(), 4, map[string]string{
		ColPostID: "77",
		ColStatus: "done_wp",
	})
	require.NoError(t, err)

	require.NotNil(t, batch)
	assert.Equal(t, "RAW", batch.ValueInputOption)
	require.Len(t, batch.Data, 2)

	got := map[string]string{}
	for _, vr := range batch.Data {
		got[vr.Range] = vr.Values[0][0].(string)
	}
	assert.Equal(t, "77", got["Posts!C4"])
	assert.Equal(t, "done_wp", got["Posts!A4"])
}

func TestWriteColumns_SkipsUnknownColumns(t *testing.T) {
	writes := 0
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			valuesResponse([][]any{{"status"}})(w, r)
			return
		}
		writes++
		_ = json.NewEncoder(w).Encode(&sheetsapi.BatchUpdateValuesResponse{})
	}))

	_, err := store.ReadAll(context.Background())
	require.NoError(t, err)

	// No recognized column in the update map: no write at all.
	require.NoError(t, store.WriteColumns(context.Background(), 2, map[string]string{ColSlug: "x"}))
	assert.Zero(t, writes)
}

func TestWriteColumns_RequiresHeader(t *testing.T) {
	store := newTestStore(t, valuesResponse(nil))
	err := store.WriteColumns(context.Background(), 2, map[string]string{ColStatus: "done"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header not loaded")
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AZ", columnLetter(51))
	assert.Equal(t, "BA", columnLetter(52))
}
