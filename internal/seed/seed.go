package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Baseline categories created on every seed run. One stays unpublished so
// the hidden-category behaviour is exercisable out of the box.
var baseCategories = []models.Category{
	{Slug: "travel", Title: "Travel", Description: "Trips, routes and places worth the detour.", IsPublished: true},
	{Slug: "food", Title: "Food", Description: "Recipes, restaurants and kitchen experiments.", IsPublished: true},
	{Slug: "technology", Title: "Technology", Description: "Software, hardware and everything in between.", IsPublished: true},
	{Slug: "books", Title: "Books", Description: "Reading notes and recommendations.", IsPublished: true},
	{Slug: "drafts-lab", Title: "Drafts Lab", Description: "Editorial staging area, not yet public.", IsPublished: false},
}

var baseLocations = []string{
	"Lisbon", "Kyoto", "Reykjavik", "Buenos Aires", "Tbilisi",
	"Porto", "Hanoi", "Oaxaca", "Tallinn", "Marrakesh",
}

// Seed populates the database with demo users, categories, locations, posts
// and comments. A slice of the generated posts is deliberately left as
// drafts or scheduled into the future so feeds and profiles show the full
// range of visibility states.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db, SeedOptions{})

	categories, err := createOrGetCategories(db)
	if err != nil {
		return fmt.Errorf("failed to create categories: %w", err)
	}
	log.Printf("%d categories available", len(categories))

	locations, err := createOrGetLocations(db)
	if err != nil {
		return fmt.Errorf("failed to create locations: %w", err)
	}
	log.Printf("%d locations available", len(locations))

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := createPosts(factory, users, categories, locations, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := createComments(factory, users, posts); err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}

	log.Println("Database seeding completed.")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, posts, categories, locations, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createOrGetCategories(db *gorm.DB) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(baseCategories))
	for _, c := range baseCategories {
		var category models.Category
		err := db.Where(models.Category{Slug: c.Slug}).
			Attrs(models.Category{Title: c.Title, Description: c.Description, IsPublished: c.IsPublished}).
			FirstOrCreate(&category).Error
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func createOrGetLocations(db *gorm.DB) ([]models.Location, error) {
	locations := make([]models.Location, 0, len(baseLocations))
	for _, name := range baseLocations {
		var location models.Location
		err := db.Where(models.Location{Name: name}).
			Attrs(models.Location{IsPublished: true}).
			FirstOrCreate(&location).Error
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a few fixed accounts so manual testing has stable logins.
	if count >= 2 {
		base := []struct {
			username string
			staff    bool
		}{
			{"editor", true},
			{"reader", false},
		}
		for _, b := range base {
			b := b
			user, err := factory.CreateUser(func(u *models.User) {
				u.Username = b.username
				u.Email = fmt.Sprintf("%s@example.com", b.username)
				u.IsStaff = b.staff
			})
			if err != nil {
				log.Printf("Failed to create user %s: %v", b.username, err)
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createPosts(factory *Factory, users []*models.User, categories []models.Category, locations []models.Location, count int) ([]*models.Post, error) {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]*models.Post, 0, count)

	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]

		post := factory.BuildPost(author, func(p *models.Post) {
			// roughly 70% categorized, the rest uncategorized
			if r.Float32() < 0.7 {
				category := categories[r.Intn(len(categories))]
				p.CategoryID = &category.ID
			}
			if r.Float32() < 0.4 {
				location := locations[r.Intn(len(locations))]
				p.LocationID = &location.ID
			}
			// 15% drafts, 10% scheduled into the future
			switch roll := r.Float32(); {
			case roll < 0.15:
				p.IsPublished = false
			case roll < 0.25:
				p.PubDate = time.Now().Add(time.Duration(r.Intn(30)+1) * 24 * time.Hour)
			}
		})
		posts = append(posts, post)
	}

	if err := factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func createComments(factory *Factory, users []*models.User, posts []*models.Post) error {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for _, post := range posts {
		// only publicly visible posts attract seeded discussion
		if !post.IsPublished || post.PubDate.After(time.Now()) {
			continue
		}
		for i := 0; i < r.Intn(6); i++ {
			author := users[r.Intn(len(users))]
			if _, err := factory.CreateComment(author, post); err != nil {
				return err
			}
			created++
		}
	}

	log.Printf("%d comments created", created)
	return nil
}
