// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post in the Inkwell application.
//
// A post becomes publicly visible only when it is published, its category (if
// any) is published, and its scheduled publish time has passed. The author
// always sees their own posts. Deletion is a hard delete and cascades to the
// post's comments.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	ImageURL    string    `json:"image_url,omitempty"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	LocationID  *uint     `gorm:"index" json:"location_id,omitempty"`
	Location    *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerID returns the ID of the account that may edit or delete the post.
func (p *Post) OwnerID() uint {
	return p.AuthorID
}
