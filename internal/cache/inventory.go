package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix         = "post:%d"
	FeedFirstPagePrefix   = "feed:index:p1"
	CategoryFeedKeyPrefix = "feed:category:%s:p1"
	ProfileKeyPrefix      = "profile:%s"
)

const (
	PostTTL    = 10 * time.Minute
	FeedTTL    = 1 * time.Minute
	ProfileTTL = 5 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedFirstPageKey is the key for the anonymous first page of the index feed.
// Only the anonymous view is cached; authenticated feeds include the viewer's
// own hidden posts and must not be shared.
func FeedFirstPageKey() string {
	return FeedFirstPagePrefix
}

func CategoryFeedKey(slug string) string {
	return fmt.Sprintf(CategoryFeedKeyPrefix, slug)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached post and both feed entry points. Category
// feeds are invalidated by slug when known.
func InvalidatePost(ctx context.Context, postID uint, categorySlug string) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, FeedFirstPageKey())
	if categorySlug != "" {
		Invalidate(ctx, CategoryFeedKey(categorySlug))
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}
