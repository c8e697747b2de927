// Package service holds the application's business rules. Services take
// validated input structs, consult repositories, and return domain models or
// typed application errors; they never touch the transport layer.
package service

import (
	"context"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
	"inkwell/internal/visibility"
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	locationRepo repository.LocationRepository
	authorizer   *authz.Authorizer
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Text        string
	ImageURL    string
	PubDate     string
	IsPublished bool
	CategoryID  *uint
	LocationID  *uint
}

// UpdatePostInput replaces the whole editable surface of a post, mirroring a
// submitted edit form. Omitted optional references clear the association.
type UpdatePostInput struct {
	ViewerID    uint
	PostID      uint
	Title       string
	Text        string
	ImageURL    string
	PubDate     string
	IsPublished bool
	CategoryID  *uint
	LocationID  *uint
}

type DeletePostInput struct {
	ViewerID uint
	PostID   uint
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	locationRepo repository.LocationRepository,
	authorizer *authz.Authorizer,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		authorizer:   authorizer,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	pubDate := time.Now()
	if in.PubDate != "" {
		parsed, err := validation.ParsePubDate(in.PubDate)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		pubDate = parsed
	}

	if err := s.checkReferences(ctx, in.CategoryID, in.LocationID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       in.Title,
		Text:        in.Text,
		ImageURL:    in.ImageURL,
		PubDate:     pubDate,
		IsPublished: in.IsPublished,
		AuthorID:    in.AuthorID,
		CategoryID:  in.CategoryID,
		LocationID:  in.LocationID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	invalidatePostViews(ctx, created, categorySlug(created))
	return created, nil
}

// GetPost returns the post as the viewer may see it. A post hidden from the
// viewer answers NotFound, exactly like a post that does not exist, so the
// response leaks nothing about drafts or scheduled posts. Anonymous reads go
// through the cache; the visibility rule is applied after loading either way.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post *models.Post
	var err error

	if viewerID == 0 {
		var cached models.Post
		err = cache.Aside(ctx, cache.PostKey(id), &cached, cache.PostTTL, func() error {
			loaded, fetchErr := s.postRepo.GetByID(ctx, id)
			if fetchErr != nil {
				return fetchErr
			}
			cached = *loaded
			return nil
		})
		post = &cached
	} else {
		post, err = s.postRepo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if !visibility.VisibleTo(post, viewerID, time.Now()) {
		observability.HiddenEntityReads.WithLabelValues("post").Inc()
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ctx, in.ViewerID, post, authz.ActionEdit, "post"); err != nil {
		return nil, err
	}

	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	pubDate, err := validation.ParsePubDate(in.PubDate)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.checkReferences(ctx, in.CategoryID, in.LocationID); err != nil {
		return nil, err
	}

	// Remember the category the post is leaving; its cached feed goes stale too.
	oldSlug := categorySlug(post)

	post.Title = in.Title
	post.Text = in.Text
	post.ImageURL = in.ImageURL
	post.PubDate = pubDate
	post.IsPublished = in.IsPublished
	post.CategoryID = in.CategoryID
	post.LocationID = in.LocationID

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	invalidatePostViews(ctx, updated, oldSlug, categorySlug(updated))
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if err := s.authorizer.Authorize(ctx, in.ViewerID, post, authz.ActionDelete, "post"); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	invalidatePostViews(ctx, post, categorySlug(post))
	return nil
}

// invalidatePostViews drops every anonymous cached view a post mutation can
// leave stale: the post detail, the index feed first page, the category feeds
// the post appeared in, and the author's profile page.
func invalidatePostViews(ctx context.Context, post *models.Post, slugs ...string) {
	cache.InvalidatePost(ctx, post.ID, "")
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		cache.Invalidate(ctx, cache.CategoryFeedKey(slug))
	}
	if post.Author.Username != "" {
		cache.InvalidateProfile(ctx, post.Author.Username)
	}
}

func categorySlug(p *models.Post) string {
	if p.Category != nil {
		return p.Category.Slug
	}
	return ""
}

// checkReferences verifies that a post's category and location choices exist
// and are published. Authors cannot file posts under hidden references, even
// though existing posts keep theirs when an administrator unpublishes one.
func (s *PostService) checkReferences(ctx context.Context, categoryID, locationID *uint) error {
	if categoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *categoryID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.NewValidationError("Unknown category")
			}
			return err
		}
		if !category.IsPublished {
			return models.NewValidationError("Unknown category")
		}
	}
	if locationID != nil {
		location, err := s.locationRepo.GetByID(ctx, *locationID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.NewValidationError("Unknown location")
			}
			return err
		}
		if !location.IsPublished {
			return models.NewValidationError("Unknown location")
		}
	}
	return nil
}
