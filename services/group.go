package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plumeapp/plume/models"
)

// GroupService manages topic groups. Groups are admin tooling: created
// rarely, deleted almost never. Deleting one clears the group reference on
// its posts instead of cascading into them.
type GroupService struct {
	db *gorm.DB
}

// NewGroupService creates a new GroupService instance.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// Create adds a new group. Slugs are unique and at most 20 characters.
func (s *GroupService) Create(title, slug, description string) (models.Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(strings.ToLower(slug))
	if title == "" {
		return models.Group{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if slug == "" {
		return models.Group{}, fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if len(slug) > 20 {
		return models.Group{}, fmt.Errorf("%w: slug must be at most 20 characters", ErrValidation)
	}

	var count int64
	if err := s.db.Model(&models.Group{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return models.Group{}, err
	}
	if count > 0 {
		return models.Group{}, fmt.Errorf("%w: slug %q", ErrConflict, slug)
	}

	group := models.Group{Title: title, Slug: slug, Description: description}
	if err := s.db.Create(&group).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// List returns all groups ordered by title.
func (s *GroupService) List() ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Order("title ASC").Find(&groups).Error
	return groups, err
}

// BySlug resolves a group by its slug.
func (s *GroupService) BySlug(slug string) (models.Group, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return group, nil
}

// Delete removes a group. Posts published under it survive with a cleared
// group reference; both steps run in one transaction so no post ever points
// at a missing group.
func (s *GroupService) Delete(slug string) error {
	group, err := s.BySlug(slug)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}
