// Package visibility answers one question: which posts may this viewer see.
// The rule lives here once, as a pure predicate for single posts and as a
// feed resolver for listings, so list and detail views can never drift apart.
package visibility

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// PubliclyVisibleAt reports whether the post is visible to everyone at the
// given instant: published, publication date not in the future, and filed in
// a published category or in no category at all.
func PubliclyVisibleAt(p *models.Post, now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.PubDate.After(now) {
		return false
	}
	if p.CategoryID != nil {
		if p.Category == nil || !p.Category.IsPublished {
			return false
		}
	}
	return true
}

// VisibleTo reports whether the viewer may see the post. Authors always see
// their own posts; everyone else gets the public rule. Viewer ID 0 is an
// anonymous viewer.
func VisibleTo(p *models.Post, viewerID uint, now time.Time) bool {
	if viewerID != 0 && viewerID == p.AuthorID {
		return true
	}
	return PubliclyVisibleAt(p, now)
}

// Scope narrows a feed to a category, an author, or both. IncludeHidden skips
// the visibility filter for the scoped author and must only be set when the
// viewer is that author.
type Scope struct {
	CategorySlug  string
	AuthorID      uint
	IncludeHidden bool
}

// FeedPage is one page of a resolved feed. HasMore is computed by fetching one
// row past the page boundary, never by a separate count query.
type FeedPage struct {
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	HasMore bool           `json:"has_more"`
}

// Resolver builds visibility-filtered, paginated feeds.
type Resolver struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	pageSize   int
}

// NewResolver returns a Resolver with the given fixed page size.
func NewResolver(posts repository.PostRepository, categories repository.CategoryRepository, pageSize int) *Resolver {
	return &Resolver{posts: posts, categories: categories, pageSize: pageSize}
}

// PageSize returns the resolver's fixed page size.
func (r *Resolver) PageSize() int {
	return r.pageSize
}

// ResolveFeed returns the requested page of the feed described by scope, as
// seen by viewerID. Pages are 1-indexed and are counted after filtering, so
// page boundaries differ between viewers who see different sets of posts.
// An absent or unpublished category resolves to NotFound, indistinguishable
// from a category that never existed.
func (r *Resolver) ResolveFeed(ctx context.Context, viewerID uint, scope Scope, page int) (*FeedPage, error) {
	if page < 1 {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid page number %d", page))
	}
	if scope.IncludeHidden && (scope.AuthorID == 0 || scope.AuthorID != viewerID) {
		return nil, models.NewInternalError(fmt.Errorf("hidden posts requested for author %d by viewer %d", scope.AuthorID, viewerID))
	}

	q := repository.PostQuery{
		ViewerID:           viewerID,
		AuthorID:           scope.AuthorID,
		IncludeAllByAuthor: scope.IncludeHidden,
		Limit:              r.pageSize + 1,
		Offset:             (page - 1) * r.pageSize,
	}

	if scope.CategorySlug != "" {
		category, err := r.categories.GetBySlug(ctx, scope.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil || !category.IsPublished {
			return nil, models.NewNotFoundError("Category", scope.CategorySlug)
		}
		q.CategoryID = category.ID
	}

	posts, err := r.posts.ListVisible(ctx, q)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > r.pageSize
	if hasMore {
		posts = posts[:r.pageSize]
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return &FeedPage{Posts: posts, Page: page, HasMore: hasMore}, nil
}
