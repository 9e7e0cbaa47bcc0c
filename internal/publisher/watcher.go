package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/communitydesk/sheetpress/internal/wordpress"
)

// DefaultPollInterval is how often the watcher checks post status.
const DefaultPollInterval = 15 * time.Second

// PostFetcher is the read-only CMS surface the watcher needs.
type PostFetcher interface {
	GetPost(ctx context.Context, id int) (*wordpress.Post, error)
}

// Watcher polls a post until it reaches publish status or a deadline passes.
type Watcher struct {
	CMS      PostFetcher
	Interval time.Duration // defaults to DefaultPollInterval when zero
}

// WaitForPublish returns true once the post status is "publish", and false
// when the timeout elapses or ctx is cancelled. Fetch errors during a tick
// are logged and treated as not-yet-published.
func (w *Watcher) WaitForPublish(ctx context.Context, id int, timeout time.Duration) bool {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		post, err := w.CMS.GetPost(ctx, id)
		if err != nil {
			fmt.Printf("[poll publish] post %d: %v\n", id, err)
		} else if post.Status == wordpress.StatusPublish {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
