package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryText(t *testing.T) {
	s := Summary{Worksheet: "Posts", Created: 2, Updated: 1, Skipped: 3, Errored: 1, FBPosted: 2}
	assert.Equal(t, "sheetpress run (Posts): 2 created, 1 updated, 3 skipped, 1 errored, 2 posted to FB", s.Text())
}

func TestSend(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	summary := Summary{Worksheet: "Posts", Created: 1}
	require.NoError(t, Send(context.Background(), nil, server.URL, summary))
	assert.Equal(t, summary.Text(), got["text"])
}

func TestSend_EmptyURLIsNoop(t *testing.T) {
	require.NoError(t, Send(context.Background(), nil, "", Summary{}))
}

func TestSend_HTTPErrorReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := Send(context.Background(), nil, server.URL, Summary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
