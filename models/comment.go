package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply attached to a post. Comments are listed in creation
// order and are removed together with their post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"post_id"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"index;not null" json:"created"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
}

// BeforeCreate stamps the creation time once.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	return nil
}
