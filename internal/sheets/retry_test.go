package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("read tcp: Connection reset by peer")))
	assert.True(t, isTransient(errors.New("local error: tls: unexpected EOF")))
	assert.True(t, isTransient(errors.New("context deadline exceeded")))
	assert.True(t, isTransient(errors.New("Rate Limit Exceeded")))
	assert.True(t, isTransient(&googleapi.Error{Code: http.StatusServiceUnavailable}))
	assert.True(t, isTransient(&googleapi.Error{Code: http.StatusTooManyRequests}))

	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(errors.New("invalid value in range")))
	assert.False(t, isTransient(&googleapi.Error{Code: http.StatusBadRequest}))
}

// flakySheetServer fails the first n write attempts with the given status
// and body, then succeeds.
func flakySheetServer(failures *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(&sheetsapi.ValueRange{Values: [][]any{{"status"}}})
			return
		}
		if *failures > 0 {
			*failures--
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		_ = json.NewEncoder(w).Encode(&sheetsapi.BatchUpdateValuesResponse{})
	})
}

func TestWriteColumns_RetriesConnectionReset(t *testing.T) {
	failures := 2
	store := newTestStore(t, flakySheetServer(&failures, http.StatusServiceUnavailable, "Connection reset by peer"))

	var slept []time.Duration
	store.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := store.ReadAll(context.Background())
	require.NoError(t, err)

	err = store.WriteColumns(context.Background(), 2, map[string]string{ColStatus: "done_wp"})
	require.NoError(t, err)
	assert.Zero(t, failures)
	require.Len(t, slept, 2)
	// Exponential backoff: 1.5^0 then 1.5^1 seconds.
	assert.Equal(t, time.Second, slept[0])
	assert.Equal(t, 1500*time.Millisecond, slept[1])
}

func TestWriteColumns_NonTransientErrorNotRetried(t *testing.T) {
	failures := 5
	store := newTestStore(t, flakySheetServer(&failures, http.StatusBadRequest, `{"error":{"code":400,"message":"invalid range"}}`))

	attemptsSlept := 0
	store.sleep = func(time.Duration) { attemptsSlept++ }

	_, err := store.ReadAll(context.Background())
	require.NoError(t, err)

	err = store.WriteColumns(context.Background(), 2, map[string]string{ColStatus: "done_wp"})
	require.Error(t, err)
	assert.Zero(t, attemptsSlept)
	assert.Equal(t, 4, failures) // exactly one attempt
}

func TestWriteColumns_GivesUpAfterBoundedAttempts(t *testing.T) {
	failures := 100
	store := newTestStore(t, flakySheetServer(&failures, http.StatusServiceUnavailable, "Service unavailable"))
	store.sleep = func(time.Duration) {}

	_, err := store.ReadAll(context.Background())
	require.NoError(t, err)

	err = store.WriteColumns(context.Background(), 2, map[string]string{ColStatus: "done_wp"})
	require.Error(t, err)
	assert.Equal(t, 100-maxWriteAttempts, failures)
}
