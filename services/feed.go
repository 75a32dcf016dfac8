package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plumeapp/plume/models"
)

// FeedService composes the paginated post listings: global, per group,
// per author, and the personal feed of followed authors. All feeds are
// ordered by publication date descending.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a new FeedService instance.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Global returns all posts.
func (s *FeedService) Global(page, size int) (Page[models.Post], error) {
	page, size = NormalizePage(page, size)
	return s.paginate(s.db.Model(&models.Post{}), page, size)
}

// Group returns posts published under the group identified by slug.
func (s *FeedService) Group(slug string, page, size int) (models.Group, Page[models.Post], error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group, Page[models.Post]{}, ErrNotFound
		}
		return group, Page[models.Post]{}, err
	}
	page, size = NormalizePage(page, size)
	feed, err := s.paginate(s.db.Model(&models.Post{}).Where("group_id = ?", group.ID), page, size)
	return group, feed, err
}

// Author returns posts written by the user identified by username.
func (s *FeedService) Author(username string, page, size int) (models.User, Page[models.Post], error) {
	var author models.User
	if err := s.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return author, Page[models.Post]{}, ErrNotFound
		}
		return author, Page[models.Post]{}, err
	}
	page, size = NormalizePage(page, size)
	feed, err := s.paginate(s.db.Model(&models.Post{}).Where("author_id = ?", author.ID), page, size)
	return author, feed, err
}

// Followed returns posts by every author userID currently follows.
// The membership filter is a subquery pushed down to the database, not a
// materialized author list filtered in application code. A user following
// nobody gets an empty page, not an error.
func (s *FeedService) Followed(userID uint, page, size int) (Page[models.Post], error) {
	page, size = NormalizePage(page, size)
	followed := s.db.Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", userID)
	return s.paginate(s.db.Model(&models.Post{}).Where("author_id IN (?)", followed), page, size)
}

func (s *FeedService) paginate(query *gorm.DB, page, size int) (Page[models.Post], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Post]{}, err
	}

	var posts []models.Post
	err := query.
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return Page[models.Post]{}, err
	}
	return newPage(posts, page, size, total), nil
}
