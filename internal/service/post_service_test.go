package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultAuthorizer() *authz.Authorizer {
	return authz.New(authz.Policy{DenialMode: authz.DenialForbidden}, nil)
}

func newPostService(postRepo *postRepoStub) *PostService {
	return NewPostService(postRepo, noopCategoryRepo(), noopLocationRepo(), defaultAuthorizer())
}

func uintPtr(v uint) *uint { return &v }

func TestCreatePostValidation(t *testing.T) {
	svc := newPostService(noopPostRepo())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 0, Title: "T", Text: "body"})
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))

	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: "", Text: "body"})
	assertValidationError(t, err)

	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: "T", Text: "   "})
	assertValidationError(t, err)

	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: "T", Text: "body", PubDate: "not-a-date"})
	assertValidationError(t, err)
}

func TestCreatePostUnknownCategory(t *testing.T) {
	categories := noopCategoryRepo()
	categories.getByIDFn = func(_ context.Context, id uint) (*models.Category, error) {
		if id == 2 {
			return &models.Category{ID: 2, IsPublished: false}, nil
		}
		return nil, models.NewNotFoundError("Category", id)
	}
	svc := NewPostService(noopPostRepo(), categories, noopLocationRepo(), defaultAuthorizer())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: "T", Text: "body", CategoryID: uintPtr(99)})
	assertValidationError(t, err)

	// An unpublished category is as unusable as a missing one.
	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Title: "T", Text: "body", CategoryID: uintPtr(2)})
	assertValidationError(t, err)
}

func TestCreatePostScheduled(t *testing.T) {
	var created *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 5
		created = p
		return nil
	}
	svc := newPostService(repo)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID:    1,
		Title:       "New year plans",
		Text:        "Posting this early.",
		PubDate:     "2027-01-01T09:00:00Z",
		IsPublished: true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 2027, created.PubDate.Year())
	assert.True(t, created.IsPublished)
}

func TestGetPostVisibility(t *testing.T) {
	now := time.Now()
	posts := map[uint]*models.Post{
		1: {ID: 1, AuthorID: 7, IsPublished: true, PubDate: now.Add(-time.Hour)},
		2: {ID: 2, AuthorID: 7, IsPublished: false, PubDate: now.Add(-time.Hour)},
		3: {ID: 3, AuthorID: 7, IsPublished: true, PubDate: now.Add(time.Hour)},
	}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if p, ok := posts[id]; ok {
			copied := *p
			return &copied, nil
		}
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := newPostService(repo)
	ctx := context.Background()

	// Public post: everyone sees it.
	_, err := svc.GetPost(ctx, 1, 0)
	assert.NoError(t, err)

	// Draft: hidden from strangers and anonymous, shown to the author.
	_, err = svc.GetPost(ctx, 2, 0)
	assertNotFoundError(t, err)
	_, err = svc.GetPost(ctx, 2, 8)
	assertNotFoundError(t, err)
	_, err = svc.GetPost(ctx, 2, 7)
	assert.NoError(t, err)

	// Scheduled post behaves like a draft until its time arrives.
	_, err = svc.GetPost(ctx, 3, 8)
	assertNotFoundError(t, err)
	_, err = svc.GetPost(ctx, 3, 7)
	assert.NoError(t, err)

	// Truly absent post answers exactly the same way as a hidden one.
	_, err = svc.GetPost(ctx, 99, 8)
	assertNotFoundError(t, err)
}

func TestUpdatePostOwnership(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7, Title: "Old", Text: "Old body", IsPublished: true}, nil
	}
	svc := newPostService(repo)
	ctx := context.Background()

	in := UpdatePostInput{
		PostID:      1,
		Title:       "New",
		Text:        "New body",
		PubDate:     "2026-08-01T10:00:00Z",
		IsPublished: true,
	}

	in.ViewerID = 0
	_, err := svc.UpdatePost(ctx, in)
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))

	in.ViewerID = 8
	_, err = svc.UpdatePost(ctx, in)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	var saved *models.Post
	repo.updateFn = func(_ context.Context, p *models.Post) error {
		saved = p
		return nil
	}
	in.ViewerID = 7
	_, err = svc.UpdatePost(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "New", saved.Title)
	assert.Nil(t, saved.CategoryID, "omitted category clears the association")
}

func TestDeletePostOwnership(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7}, nil
	}
	deleted := uint(0)
	repo.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := newPostService(repo)
	ctx := context.Background()

	err := svc.DeletePost(ctx, DeletePostInput{ViewerID: 8, PostID: 1})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	assert.Zero(t, deleted)

	err = svc.DeletePost(ctx, DeletePostInput{ViewerID: 7, PostID: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), deleted)
}

func TestDeletePostAlreadyGone(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	deleteCalled := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleteCalled = true
		return nil
	}
	svc := newPostService(repo)

	// Deleting a post that no longer exists answers NotFound, not success.
	err := svc.DeletePost(context.Background(), DeletePostInput{ViewerID: 7, PostID: 1})
	assertNotFoundError(t, err)
	assert.False(t, deleteCalled, "nothing to delete, the repo must not be asked")
}

// setupServiceCache points the cache package at a throwaway miniredis and
// pre-populates the given keys.
func setupServiceCache(t *testing.T, keys ...string) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	for _, key := range keys {
		require.NoError(t, mr.Set(key, "{}"))
	}
	return mr
}

func TestUpdatePostInvalidatesOldAndNewCategoryFeeds(t *testing.T) {
	mr := setupServiceCache(t,
		cache.PostKey(5),
		cache.FeedFirstPageKey(),
		cache.CategoryFeedKey("travel"),
		cache.CategoryFeedKey("food"),
		cache.ProfileKey("quill"),
	)

	// The post starts in "travel"; the reload after the update sees "food".
	loads := 0
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		loads++
		slug := "travel"
		catID := uint(1)
		if loads > 1 {
			slug = "food"
			catID = 2
		}
		return &models.Post{
			ID:          id,
			AuthorID:    7,
			Author:      models.User{ID: 7, Username: "quill"},
			IsPublished: true,
			CategoryID:  &catID,
			Category:    &models.Category{ID: catID, Slug: slug, IsPublished: true},
		}, nil
	}
	svc := newPostService(repo)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		ViewerID:    7,
		PostID:      5,
		Title:       "Moved over",
		Text:        "Now a food post.",
		PubDate:     "2026-08-01T10:00:00Z",
		IsPublished: true,
		CategoryID:  uintPtr(2),
	})
	require.NoError(t, err)

	for _, key := range []string{
		cache.PostKey(5),
		cache.FeedFirstPageKey(),
		cache.CategoryFeedKey("travel"),
		cache.CategoryFeedKey("food"),
		cache.ProfileKey("quill"),
	} {
		assert.False(t, mr.Exists(key), "expected %s to be invalidated", key)
	}
}

func TestDeletePostInvalidatesCategoryFeedAndProfile(t *testing.T) {
	mr := setupServiceCache(t,
		cache.PostKey(5),
		cache.FeedFirstPageKey(),
		cache.CategoryFeedKey("travel"),
		cache.ProfileKey("quill"),
	)

	catID := uint(1)
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{
			ID:         id,
			AuthorID:   7,
			Author:     models.User{ID: 7, Username: "quill"},
			CategoryID: &catID,
			Category:   &models.Category{ID: catID, Slug: "travel", IsPublished: true},
		}, nil
	}
	svc := newPostService(repo)

	require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{ViewerID: 7, PostID: 5}))

	for _, key := range []string{
		cache.PostKey(5),
		cache.FeedFirstPageKey(),
		cache.CategoryFeedKey("travel"),
		cache.ProfileKey("quill"),
	} {
		assert.False(t, mr.Exists(key), "expected %s to be invalidated", key)
	}
}

func TestDeletePostStaffOverride(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7}, nil
	}
	isStaff := func(_ context.Context, viewerID uint) (bool, error) {
		return viewerID == 9, nil
	}
	authorizer := authz.New(authz.Policy{StaffOverride: true, DenialMode: authz.DenialForbidden}, isStaff)
	svc := NewPostService(repo, noopCategoryRepo(), noopLocationRepo(), authorizer)

	err := svc.DeletePost(context.Background(), DeletePostInput{ViewerID: 9, PostID: 1})
	assert.NoError(t, err)

	err = svc.DeletePost(context.Background(), DeletePostInput{ViewerID: 8, PostID: 1})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}
