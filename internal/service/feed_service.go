package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/visibility"
)

type FeedService struct {
	resolver     *visibility.Resolver
	categoryRepo repository.CategoryRepository
}

// CategoryFeed is a category page: the category header plus one page of its
// visible posts.
type CategoryFeed struct {
	Category models.Category      `json:"category"`
	Feed     *visibility.FeedPage `json:"feed"`
}

func NewFeedService(resolver *visibility.Resolver, categoryRepo repository.CategoryRepository) *FeedService {
	return &FeedService{resolver: resolver, categoryRepo: categoryRepo}
}

// IndexFeed returns one page of the site-wide feed. The anonymous first page
// is the hottest path and the only cacheable one; authenticated feeds include
// the viewer's own hidden posts.
func (s *FeedService) IndexFeed(ctx context.Context, viewerID uint, page int) (*visibility.FeedPage, error) {
	if viewerID == 0 && page == 1 {
		var cached visibility.FeedPage
		err := cache.Aside(ctx, cache.FeedFirstPageKey(), &cached, cache.FeedTTL, func() error {
			feed, feedErr := s.resolver.ResolveFeed(ctx, 0, visibility.Scope{}, 1)
			if feedErr != nil {
				return feedErr
			}
			cached = *feed
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}
	return s.resolver.ResolveFeed(ctx, viewerID, visibility.Scope{}, page)
}

// GetCategoryFeed returns one page of a published category's feed. Absent and
// unpublished categories are indistinguishable to the caller.
func (s *FeedService) GetCategoryFeed(ctx context.Context, slug string, viewerID uint, page int) (*CategoryFeed, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil || !category.IsPublished {
		return nil, models.NewNotFoundError("Category", slug)
	}

	scope := visibility.Scope{CategorySlug: slug}

	if viewerID == 0 && page == 1 {
		var cached CategoryFeed
		err := cache.Aside(ctx, cache.CategoryFeedKey(slug), &cached, cache.FeedTTL, func() error {
			feed, feedErr := s.resolver.ResolveFeed(ctx, 0, scope, 1)
			if feedErr != nil {
				return feedErr
			}
			cached = CategoryFeed{Category: *category, Feed: feed}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	feed, err := s.resolver.ResolveFeed(ctx, viewerID, scope, page)
	if err != nil {
		return nil, err
	}
	return &CategoryFeed{Category: *category, Feed: feed}, nil
}
