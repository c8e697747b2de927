package seed

import (
	"testing"
	"time"

	"inkwell/internal/models"
)

func TestBuildPost_TimestampSpread(t *testing.T) {
	opts := SeedOptions{DryRun: true, MaxDays: 30}
	f := NewFactory(nil, opts)
	author := &models.User{ID: 1}

	p := f.BuildPost(author)
	if p.Title == "" || p.Text == "" {
		t.Fatalf("expected generated title and text, got %q / %q", p.Title, p.Text)
	}
	if p.AuthorID != author.ID {
		t.Fatalf("expected author %d, got %d", author.ID, p.AuthorID)
	}

	// publish date should fall within MaxDays of now
	if time.Since(p.PubDate) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
		t.Fatalf("pub_date too old: %v", p.PubDate)
	}
	if p.PubDate.After(time.Now()) {
		t.Fatalf("default build should not schedule into the future: %v", p.PubDate)
	}
}

func TestBuildPost_Overrides(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true})
	author := &models.User{ID: 7}
	future := time.Now().Add(48 * time.Hour)

	p := f.BuildPost(author, func(post *models.Post) {
		post.IsPublished = false
		post.PubDate = future
	})
	if p.IsPublished {
		t.Fatalf("override should have left the post a draft")
	}
	if !p.PubDate.Equal(future) {
		t.Fatalf("override pub_date not applied: %v", p.PubDate)
	}
}

func TestCreateUser_DryRunAssignsIDs(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true})

	u1, err := f.CreateUser()
	if err != nil {
		t.Fatalf("dry-run create failed: %v", err)
	}
	u2, err := f.CreateUser()
	if err != nil {
		t.Fatalf("dry-run create failed: %v", err)
	}
	if u1.ID == 0 || u2.ID == 0 || u1.ID == u2.ID {
		t.Fatalf("expected distinct synthetic IDs, got %d and %d", u1.ID, u2.ID)
	}
	if u1.Password != "password123" {
		t.Fatalf("SkipBcrypt should store the plaintext dev password")
	}
}
