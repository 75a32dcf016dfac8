package models

// Group is a topic that posts can optionally be published under.
// Groups are created by admins and are never deleted in normal flow;
// when one is removed its posts keep existing with a cleared group reference.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:20;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}
