// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment on a post. Comments are hard-deleted together
// with their post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID returns the ID of the account that may edit or delete the comment.
func (c *Comment) OwnerID() uint {
	return c.AuthorID
}
