package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines read operations for categories. Categories are
// administrator-managed; the API never creates or edits them.
type CategoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// GetBySlug returns (nil, nil) when no category carries the slug; callers fold
// that into the same NotFound as an unpublished category.
func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, publishedOnly bool) ([]models.Category, error) {
	var categories []models.Category
	db := r.db.WithContext(ctx)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if err := db.Order("title ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// LocationRepository defines read operations for locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Location", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context, publishedOnly bool) ([]models.Location, error) {
	var locations []models.Location
	db := r.db.WithContext(ctx)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if err := db.Order("name ASC").Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return locations, nil
}
