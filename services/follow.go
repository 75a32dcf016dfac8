package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plumeapp/plume/models"
)

// FollowService manages the directed follow relation between users.
// The edge is a 2-state machine: absent or present, with both transitions
// idempotent. Duplicate-edge protection lives in the storage layer (unique
// index + insert-if-absent), not in a check-then-insert sequence, so a
// double-clicked follow cannot create two rows.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService creates a new FollowService instance.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow makes userID follow authorID. Following yourself is an invalid
// operation; following someone you already follow is a no-op.
func (s *FollowService) Follow(userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	edge := models.Follow{UserID: userID, AuthorID: authorID}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
		DoNothing: true,
	}).Create(&edge).Error
}

// Unfollow removes the edge if present; removing an absent edge is a no-op.
func (s *FollowService) Unfollow(userID, authorID uint) error {
	return s.db.
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether viewerID follows authorID. Anonymous viewers
// (id 0) are never following anyone and never cause an error.
func (s *FollowService) IsFollowing(viewerID, authorID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", viewerID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerCount returns how many users follow authorID.
func (s *FollowService) FollowerCount(authorID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// FollowingCount returns how many authors userID follows.
func (s *FollowService) FollowingCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
