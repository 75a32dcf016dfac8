package models

import "time"

// Follow is a directed edge: UserID follows AuthorID, meaning the user's
// personal feed includes that author's posts. The composite unique index
// makes the edge a set member, so concurrent duplicate follow requests
// cannot produce more than one row.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follows_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follows_user_author;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
