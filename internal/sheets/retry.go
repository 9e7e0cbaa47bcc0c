package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// maxWriteAttempts bounds retries of one sheet write.
const maxWriteAttempts = 6

// backoffBase is the exponential backoff base in seconds (1.5^attempt).
const backoffBase = 1.5

// transientSubstrings is the allow-list of error text fragments treated as
// retryable network flakiness. Anything else propagates immediately.
var transientSubstrings = []string{
	"connection reset",
	"broken pipe",
	"unexpected eof",
	"remote end closed",
	"deadline exceeded",
	"service unavailable",
	"rate limit",
	"ratelimitexceeded",
	"quota exceeded",
	"timeout awaiting response",
}

// transientStatusCodes are HTTP statuses from the Sheets API worth retrying.
var transientStatusCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// isTransient reports whether an error matches the retry allow-list.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && transientStatusCodes[apiErr.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// withRetry runs fn up to maxWriteAttempts times, sleeping 1.5^attempt
// seconds between transient failures. Non-transient errors and the final
// transient error propagate unchanged.
func (s *Store) withRetry(ctx context.Context, label string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxWriteAttempts-1 || !isTransient(err) {
			return err
		}
		wait := time.Duration(math.Pow(backoffBase, float64(attempt)) * float64(time.Second))
		fmt.Printf("[Sheets retry %d/%d] %s: %v; sleeping %s\n", attempt+1, maxWriteAttempts, label, err, wait.Round(100*time.Millisecond))
		select {
		case <-ctx.Done():
			return err
		default:
		}
		s.sleep(wait)
	}
}
