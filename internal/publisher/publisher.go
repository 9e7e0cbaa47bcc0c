// Package publisher decides between creating and updating a CMS post and
// watches for manual publication.
package publisher

import (
	"context"
	"fmt"

	"github.com/communitydesk/sheetpress/internal/wordpress"
)

// CMS is the WordPress surface the publisher needs.
type CMS interface {
	GetPost(ctx context.Context, id int) (*wordpress.Post, error)
	CreatePost(ctx context.Context, params wordpress.PostParams) (*wordpress.Post, error)
	UpdatePost(ctx context.Context, id int, params wordpress.PostParams) (*wordpress.Post, error)
	FindPostBySlug(ctx context.Context, slug string) (*wordpress.Post, error)
}

// Draft is everything needed to upsert one post.
type Draft struct {
	Title         string
	Content       string
	Categories    []int
	Tags          []int
	ExistingID    int    // update this ID when > 0; a missing ID is an error, not a create
	Slug          string // used for lookup when ExistingID is 0, and sent on create
	Author        int
	Date          string
	FeaturedMedia int
	Meta          map[string]string
	PublishDirect bool // skip the draft stage and publish immediately
}

// Result identifies the upserted post.
type Result struct {
	ID      int
	Link    string
	Updated bool
}

// Publish upserts a single post. Exactly one state-changing request is made;
// any failure surfaces to the caller with no internal retry.
func Publish(ctx context.Context, cms CMS, draft Draft) (*Result, error) {
	status := wordpress.StatusDraft
	if draft.PublishDirect {
		status = wordpress.StatusPublish
	}
	params := wordpress.PostParams{
		Title:         draft.Title,
		Content:       draft.Content,
		Status:        status,
		Categories:    draft.Categories,
		Tags:          draft.Tags,
		Slug:          draft.Slug,
		Author:        draft.Author,
		Date:          draft.Date,
		FeaturedMedia: draft.FeaturedMedia,
		Meta:          draft.Meta,
	}

	if draft.ExistingID > 0 {
		post, err := cms.UpdatePost(ctx, draft.ExistingID, params)
		if err != nil {
			return nil, fmt.Errorf("failed to update post %d: %w", draft.ExistingID, err)
		}
		return &Result{ID: post.ID, Link: post.Link, Updated: true}, nil
	}

	if draft.Slug != "" {
		existing, err := cms.FindPostBySlug(ctx, draft.Slug)
		if err != nil {
			return nil, fmt.Errorf("slug lookup failed for %q: %w", draft.Slug, err)
		}
		if existing != nil {
			post, err := cms.UpdatePost(ctx, existing.ID, params)
			if err != nil {
				return nil, fmt.Errorf("failed to update post %d: %w", existing.ID, err)
			}
			return &Result{ID: post.ID, Link: post.Link, Updated: true}, nil
		}
	}

	post, err := cms.CreatePost(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &Result{ID: post.ID, Link: post.Link}, nil
}
