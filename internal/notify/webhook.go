// Package notify sends the end-of-run summary to an optional webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds the webhook request.
const DefaultTimeout = 15 * time.Second

// Summary aggregates one batch run for reporting.
type Summary struct {
	Worksheet string
	Created   int
	Updated   int
	Skipped   int
	Errored   int
	FBPosted  int
}

// Text renders the plain-text summary line sent to the webhook and stdout.
func (s Summary) Text() string {
	return fmt.Sprintf("sheetpress run (%s): %d created, %d updated, %d skipped, %d errored, %d posted to FB",
		s.Worksheet, s.Created, s.Updated, s.Skipped, s.Errored, s.FBPosted)
}

// Send posts the summary as a {"text": ...} JSON envelope. Failures are
// returned for logging only; callers must not treat them as fatal.
func Send(ctx context.Context, httpClient *http.Client, webhookURL string, summary Summary) error {
	if webhookURL == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	payload, err := json.Marshal(map[string]string{"text": summary.Text()})
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
