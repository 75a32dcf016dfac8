package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a single publication. PubDate is stamped once at creation and
// never updated afterwards; feeds list posts by PubDate descending.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PubDate   time.Time `gorm:"index;not null" json:"pub_date"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Image     string    `gorm:"size:512" json:"image,omitempty"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Group     *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate stamps the publication date when the record is first saved.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	return nil
}
