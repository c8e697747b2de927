package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostQuery describes a visibility-filtered listing of posts. ViewerID 0 means
// an anonymous viewer. When IncludeAllByAuthor is set together with AuthorID,
// the visibility filter is skipped entirely; callers must only do that for the
// author's own listing.
type PostQuery struct {
	ViewerID           uint
	CategoryID         uint
	AuthorID           uint
	IncludeAllByAuthor bool
	Limit              int
	Offset             int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListVisible(ctx context.Context, q PostQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads a post with its author, category, location and comment count.
// It does not apply the visibility predicate; the caller decides whether the
// viewer may see the loaded post.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListVisible returns posts ordered newest first by publication date, with the
// post ID as a stable tiebreaker so pagination never duplicates or skips rows.
func (r *postRepository) ListVisible(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	var posts []*models.Post

	db := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Location")

	if q.AuthorID != 0 {
		db = db.Where("posts.author_id = ?", q.AuthorID)
	}
	if q.CategoryID != 0 {
		db = db.Where("posts.category_id = ?", q.CategoryID)
	}
	if !q.IncludeAllByAuthor {
		db = r.applyVisibility(db, q.ViewerID)
	}

	err := db.
		Order("posts.pub_date DESC, posts.id ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyVisibility restricts the query to posts the viewer may see: published
// posts with a past publication date in a published (or absent) category, plus
// everything the viewer authored.
func (r *postRepository) applyVisibility(db *gorm.DB, viewerID uint) *gorm.DB {
	db = db.Joins("LEFT JOIN categories ON categories.id = posts.category_id")

	public := "(posts.is_published = ? AND posts.pub_date <= CURRENT_TIMESTAMP" +
		" AND (posts.category_id IS NULL OR categories.is_published = ?))"

	if viewerID == 0 {
		return db.Where(public, true, true)
	}
	return db.Where(public+" OR posts.author_id = ?", true, true, viewerID)
}

// applyPostDetails adds a subquery to fetch the comment count in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete hard-deletes the post and its comments in one transaction. SQLite
// builds do not always enforce ON DELETE CASCADE, so the comments are removed
// explicitly.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
