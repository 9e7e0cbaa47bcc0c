package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/communitydesk/sheetpress/internal/wordpress"
)

func TestWaitForPublish_ImmediatelyPublished(t *testing.T) {
	cms := newFakeCMS()
	cms.posts[1] = &wordpress.Post{ID: 1, Status: wordpress.StatusPublish}

	w := &Watcher{CMS: cms, Interval: time.Millisecond}
	assert.True(t, w.WaitForPublish(context.Background(), 1, time.Second))
}

func TestWaitForPublish_Timeout(t *testing.T) {
	cms := newFakeCMS()
	cms.posts[1] = &wordpress.Post{ID: 1, Status: wordpress.StatusDraft}

	w := &Watcher{CMS: cms, Interval: time.Millisecond}
	start := time.Now()
	assert.False(t, w.WaitForPublish(context.Background(), 1, 20*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForPublish_TransientFetchErrorsAreTolerated(t *testing.T) {
	cms := newFakeCMS()
	cms.posts[1] = &wordpress.Post{ID: 1, Status: wordpress.StatusPublish}
	cms.getErr = errors.New("connection refused")
	cms.getErrLeft = 2

	w := &Watcher{CMS: cms, Interval: time.Millisecond}
	assert.True(t, w.WaitForPublish(context.Background(), 1, time.Second))
}

func TestWaitForPublish_ContextCancel(t *testing.T) {
	cms := newFakeCMS()
	cms.posts[1] = &wordpress.Post{ID: 1, Status: wordpress.StatusDraft}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &Watcher{CMS: cms, Interval: time.Millisecond}
	assert.False(t, w.WaitForPublish(ctx, 1, time.Minute))
}
