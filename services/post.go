package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plumeapp/plume/models"
	"github.com/plumeapp/plume/utils"
)

// PostService creates and mutates posts and their comments. The acting user
// is always an explicit parameter; there is no ambient current-user state.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a new PostService instance.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostInput carries the mutable post fields. GroupID nil means no group;
// on update it clears an existing group reference.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   string
}

// Create publishes a new post for authorID. The publication date is stamped
// at creation and never changes afterwards.
func (s *PostService) Create(authorID uint, in PostInput) (models.Post, error) {
	text := utils.Sanitize(in.Text)
	if strings.TrimSpace(text) == "" {
		return models.Post{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if in.GroupID != nil {
		if err := s.groupExists(*in.GroupID); err != nil {
			return models.Post{}, err
		}
	}

	post := models.Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return models.Post{}, err
	}
	return s.reload(post.ID)
}

// Update edits a post's text, group or image. Only the author may edit;
// anyone else gets ErrForbidden and the row stays untouched. The publication
// date is never part of an update.
func (s *PostService) Update(postID, editorID uint, in PostInput) (models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	if post.AuthorID != editorID {
		return models.Post{}, ErrForbidden
	}

	text := utils.Sanitize(in.Text)
	if strings.TrimSpace(text) == "" {
		return models.Post{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if in.GroupID != nil {
		if err := s.groupExists(*in.GroupID); err != nil {
			return models.Post{}, err
		}
	}

	updates := map[string]interface{}{
		"text":     text,
		"group_id": in.GroupID,
		"image":    in.Image,
	}
	if err := s.db.Model(&post).Updates(updates).Error; err != nil {
		return models.Post{}, err
	}
	return s.reload(post.ID)
}

// Get returns a post with its author, group, and comments in creation order.
func (s *PostService) Get(postID uint) (models.Post, error) {
	var post models.Post
	err := s.db.
		Preload("Author").
		Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created ASC")
		}).
		Preload("Comments.Author").
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

// AddComment appends a comment to an existing post. Commenting on a missing
// post is ErrNotFound and writes nothing.
func (s *PostService) AddComment(postID, authorID uint, text string) (models.Comment, error) {
	text = utils.Sanitize(text)
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	var count int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return models.Comment{}, err
	}
	if count == 0 {
		return models.Comment{}, ErrNotFound
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return models.Comment{}, err
	}
	if err := s.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// Delete removes a post together with its comments. Only the author (or an
// admin, signalled by the caller) may delete.
func (s *PostService) Delete(postID, editorID uint, isAdmin bool) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if post.AuthorID != editorID && !isAdmin {
		return ErrForbidden
	}

	// FK cascades are disabled at migration time, so dependent rows go in
	// the same transaction.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func (s *PostService) groupExists(groupID uint) error {
	var count int64
	if err := s.db.Model(&models.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}
	return nil
}

func (s *PostService) reload(id uint) (models.Post, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Group").First(&post, id).Error
	return post, err
}
