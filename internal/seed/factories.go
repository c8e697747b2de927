// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tunes factory behaviour for different environments.
type SeedOptions struct {
	// DryRun logs what would be created instead of writing to the database.
	DryRun bool
	// SkipBcrypt stores plaintext passwords to speed up large seeds.
	SkipBcrypt bool
	// MaxDays caps how far into the past generated publish dates spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory constructs and persists a sample `models.Category`.
func (f *Factory) CreateCategory(overrides ...func(*models.Category)) (*models.Category, error) {
	title := gofakeit.BuzzWord()
	category := &models.Category{
		Slug:        fmt.Sprintf("%s-%d", gofakeit.Adjective(), gofakeit.Number(100, 999)),
		Title:       title,
		Description: gofakeit.Sentence(12),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(category)
	}

	if f.opts.DryRun {
		f.nextID++
		category.ID = f.nextID
		log.Printf("[dry-run] CreateCategory: %s (published=%v)", category.Slug, category.IsPublished)
		return category, nil
	}

	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateLocation constructs and persists a sample `models.Location`.
func (f *Factory) CreateLocation(overrides ...func(*models.Location)) (*models.Location, error) {
	location := &models.Location{
		Name:        gofakeit.City(),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(location)
	}

	if f.opts.DryRun {
		f.nextID++
		location.ID = f.nextID
		log.Printf("[dry-run] CreateLocation: %s", location.Name)
		return location, nil
	}

	if err := f.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// BuildPost constructs a post struct without persisting it. Publish dates
// spread across the past MaxDays days, with a fraction scheduled into the
// future so the visibility rules have something to hide.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       gofakeit.Sentence(5),
		Text:        gofakeit.Paragraph(2, 4, 8, "\n\n"),
		AuthorID:    author.ID,
		IsPublished: true,
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	post.PubDate = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the given author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: author=%d published=%v pub_date=%s title=%q",
			post.AuthorID, post.IsPublished, post.PubDate.Format(time.RFC3339), post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: author.ID,
		PostID:   post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		log.Printf("[dry-run] CreateComment: author=%d post=%d", comment.AuthorID, comment.PostID)
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
