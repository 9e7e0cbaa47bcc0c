// Package pipeline orchestrates one batch run: sheet rows in, WordPress
// drafts and Facebook posts out, status columns written back.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/sheetpress/internal/caption"
	"github.com/communitydesk/sheetpress/internal/notify"
	"github.com/communitydesk/sheetpress/internal/observability"
	"github.com/communitydesk/sheetpress/internal/publisher"
	"github.com/communitydesk/sheetpress/internal/segment"
	"github.com/communitydesk/sheetpress/internal/sheets"
	"github.com/communitydesk/sheetpress/internal/wordpress"
)

// Row statuses. Only StatusReady rows are processed; done and done_all are
// terminal, done_wp may still gain a Facebook post on a later run.
const (
	StatusReady   = "ready"
	StatusDone    = "done" // legacy terminal status, accepted on read
	StatusDoneWP  = "done_wp"
	StatusDoneAll = "done_all"
)

// RowStore is the sheet surface the pipeline needs.
type RowStore interface {
	ReadAll(ctx context.Context) ([]sheets.Row, error)
	WriteColumns(ctx context.Context, rowNumber int, updates map[string]string) error
	HasColumn(col string) bool
}

// CMS extends the publisher surface with taxonomy, author and media
// resolution.
type CMS interface {
	publisher.CMS
	ResolveTermIDs(ctx context.Context, tokenString, taxonomy string) []int
	ResolveAuthor(ctx context.Context, token string) int
	UploadMediaFromURL(ctx context.Context, imageURL string) (int, error)
}

// SocialPublisher posts a caption to the page feed.
type SocialPublisher interface {
	PostToFeed(ctx context.Context, message, link string) (string, error)
}

// RunRecorder persists run history. All calls are best-effort.
type RunRecorder interface {
	CreateRun(ctx context.Context, worksheet string) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status, summary string) error
	SaveRowResult(ctx context.Context, runID uuid.UUID, rowNumber, postID int, status, note string) error
}

// Options configures one batch run.
type Options struct {
	Store         RowStore
	CMS           CMS
	Social        SocialPublisher // nil skips the Facebook stage entirely
	CaptionSource caption.Source  // nil falls back to caption.StaticSource
	Recorder      RunRecorder     // nil disables run history

	Worksheet     string
	PublishDirect bool
	PublishWait   time.Duration // how long to wait for manual publication
	PollInterval  time.Duration // watcher tick; zero uses the default
	FBPostDelay   time.Duration // fixed pause before posting when publishing directly
	WebhookURL    string
	Verbose       bool

	// Test hooks.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

// Run processes every ready row in sequence and returns the run summary.
// Only configuration errors abort a batch; per-row failures are recorded in
// the row's last_synced column and processing continues.
func Run(ctx context.Context, opts Options) (notify.Summary, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = func(ctx context.Context, d time.Duration) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		}
	}
	if opts.CaptionSource == nil {
		opts.CaptionSource = caption.StaticSource{}
	}

	summary := notify.Summary{Worksheet: opts.Worksheet}
	printer := observability.NewPrinter(os.Stdout)

	rows, err := opts.Store.ReadAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("No data in sheet.")
		return summary, nil
	}

	var runID uuid.UUID
	if opts.Recorder != nil {
		if runID, err = opts.Recorder.CreateRun(ctx, opts.Worksheet); err != nil {
			fmt.Printf("Warning: failed to record run start: %v\n", err)
			opts.Recorder = nil
		}
	}

	for _, row := range rows {
		if row.Status() != StatusReady {
			summary.Skipped++
			continue
		}
		processRow(ctx, &opts, printer, row, runID, &summary)
	}

	fmt.Println(summary.Text())
	if opts.Verbose {
		printer.PrintSummary(summary)
	}
	if opts.Recorder != nil {
		if err := opts.Recorder.CompleteRun(ctx, runID, "completed", summary.Text()); err != nil {
			fmt.Printf("Warning: failed to record run completion: %v\n", err)
		}
	}
	if err := notify.Send(ctx, nil, opts.WebhookURL, summary); err != nil {
		fmt.Printf("Warning: webhook notification failed: %v\n", err)
	}
	return summary, nil
}

// processRow runs the full per-row state machine:
// ready -> done_wp -> done_all, or ready unchanged with the error recorded.
func processRow(ctx context.Context, opts *Options, printer *observability.Printer, row sheets.Row, runID uuid.UUID, summary *notify.Summary) {
	title, body := segment.Segment(row.Get(sheets.ColRaw), row.Get(sheets.ColTitle), row.Get(sheets.ColContent))
	if title == segment.PlaceholderTitle && body == "" {
		fmt.Printf("Row %d: skipped, no usable title or body\n", row.Number)
		writeRow(ctx, opts, row.Number, map[string]string{
			sheets.ColLastSynced: stamp(opts, "skipped: empty title/body"),
		}, summary)
		summary.Skipped++
		return
	}
	if opts.Verbose {
		printer.PrintDraftPreview(row.Number, title, body)
	}

	draft := publisher.Draft{
		Title:         title,
		Content:       body,
		Categories:    opts.CMS.ResolveTermIDs(ctx, row.Get(sheets.ColCategories), wordpress.TaxonomyCategories),
		Tags:          opts.CMS.ResolveTermIDs(ctx, row.Get(sheets.ColTags), wordpress.TaxonomyTags),
		Slug:          strings.TrimSpace(row.Get(sheets.ColSlug)),
		Date:          strings.TrimSpace(row.Get(sheets.ColDate)),
		Author:        opts.CMS.ResolveAuthor(ctx, row.Get(sheets.ColAuthor)),
		Meta:          seoMeta(row),
		PublishDirect: opts.PublishDirect,
	}
	if id, ok := numericCell(row.Get(sheets.ColPostID)); ok {
		draft.ExistingID = id
	}
	if imageURL := strings.TrimSpace(row.Get(sheets.ColFeaturedImage)); imageURL != "" {
		mediaID, err := opts.CMS.UploadMediaFromURL(ctx, imageURL)
		if err != nil {
			fmt.Printf("Row %d: featured image upload failed, continuing without: %v\n", row.Number, err)
		} else {
			draft.FeaturedMedia = mediaID
		}
	}

	result, err := publisher.Publish(ctx, opts.CMS, draft)
	if err != nil {
		fmt.Printf("Row %d: WP error: %v\n", row.Number, err)
		writeRow(ctx, opts, row.Number, map[string]string{
			sheets.ColLastSynced: stamp(opts, fmt.Sprintf("WP error: %v", err)),
		}, summary)
		recordRow(ctx, opts, runID, row.Number, 0, StatusReady, fmt.Sprintf("WP error: %v", err))
		summary.Errored++
		return
	}
	if result.Updated {
		summary.Updated++
	} else {
		summary.Created++
	}

	// Persist the post identity before anything else can fail, so a rerun
	// updates instead of duplicating.
	writeRow(ctx, opts, row.Number, map[string]string{
		sheets.ColPostID:     fmt.Sprint(result.ID),
		sheets.ColWPLink:     result.Link,
		sheets.ColStatus:     StatusDoneWP,
		sheets.ColLastSynced: stamp(opts, "WP synced"),
	}, summary)

	note, status := facebookStage(ctx, opts, row, title, body, result)
	if status == StatusDoneAll {
		summary.FBPosted++
	}
	if status != StatusDoneWP {
		writeRow(ctx, opts, row.Number, map[string]string{
			sheets.ColStatus:     status,
			sheets.ColLastSynced: stamp(opts, note),
		}, summary)
	} else if note != "" {
		writeRow(ctx, opts, row.Number, map[string]string{
			sheets.ColLastSynced: stamp(opts, note),
		}, summary)
	}

	recordRow(ctx, opts, runID, row.Number, result.ID, status, note)
	if opts.Verbose {
		printer.PrintRowResult(row.Number, result.ID, status, note)
	}
	fmt.Printf("Row %d OK -> post_id=%d, %s\n", row.Number, result.ID, note)
}

// facebookStage waits for publication and posts the caption. It returns the
// note for last_synced and the final row status.
func facebookStage(ctx context.Context, opts *Options, row sheets.Row, title, body string, result *publisher.Result) (string, string) {
	if opts.Social == nil {
		return "FB skipped: disabled", StatusDoneWP
	}

	if opts.PublishDirect {
		if opts.FBPostDelay > 0 {
			opts.Sleep(ctx, opts.FBPostDelay)
		}
	} else {
		watcher := &publisher.Watcher{CMS: opts.CMS, Interval: opts.PollInterval}
		if !watcher.WaitForPublish(ctx, result.ID, opts.PublishWait) {
			return fmt.Sprintf("FB skipped: not published in %d min", int(opts.PublishWait.Minutes())), StatusDoneWP
		}
	}

	text, err := opts.CaptionSource.Caption(ctx, title, body, result.Link)
	if err != nil {
		fmt.Printf("Row %d: caption source failed, using default caption: %v\n", row.Number, err)
		text = caption.Build(title, body, result.Link)
	}
	if header, short := row.Get(sheets.ColFBHeader), row.Get(sheets.ColFBCaption); header != "" || short != "" {
		text = caption.BuildWithOverrides(title, body, result.Link, header, short)
	}

	if _, err := opts.Social.PostToFeed(ctx, text, result.Link); err != nil {
		return fmt.Sprintf("FB error: %v", err), StatusDoneWP
	}
	return "FB posted", StatusDoneAll
}

// writeRow writes columns with the store's own retry; an escalated failure
// is logged and counted but never aborts the batch.
func writeRow(ctx context.Context, opts *Options, rowNumber int, updates map[string]string, summary *notify.Summary) {
	if err := opts.Store.WriteColumns(ctx, rowNumber, updates); err != nil {
		fmt.Printf("Row %d: sheet write failed: %v\n", rowNumber, err)
		summary.Errored++
	}
}

func recordRow(ctx context.Context, opts *Options, runID uuid.UUID, rowNumber, postID int, status, note string) {
	if opts.Recorder == nil {
		return
	}
	if err := opts.Recorder.SaveRowResult(ctx, runID, rowNumber, postID, status, note); err != nil {
		fmt.Printf("Row %d: failed to record result: %v\n", rowNumber, err)
	}
}

// stamp appends the run timestamp to a note, matching the sheet's
// "<note> @ 2006-01-02 15:04:05" convention.
func stamp(opts *Options, note string) string {
	return fmt.Sprintf("%s @ %s", note, opts.Now().Format("2006-01-02 15:04:05"))
}

// seoMeta maps the optional SEO columns onto RankMath post meta fields.
func seoMeta(row sheets.Row) map[string]string {
	meta := map[string]string{}
	if v := strings.TrimSpace(row.Get(sheets.ColSEOTitle)); v != "" {
		meta["rank_math_title"] = v
	}
	if v := strings.TrimSpace(row.Get(sheets.ColSEODesc)); v != "" {
		meta["rank_math_description"] = v
	}
	if v := strings.TrimSpace(row.Get(sheets.ColSEOKeywords)); v != "" {
		meta["rank_math_focus_keyword"] = v
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// numericCell parses a purely numeric cell, tolerating surrounding space.
func numericCell(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
