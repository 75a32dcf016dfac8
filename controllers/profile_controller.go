package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plumeapp/plume/models"
	"github.com/plumeapp/plume/services"
	"github.com/plumeapp/plume/utils"
)

// ProfileController serves author profiles and the follow/unfollow endpoints.
type ProfileController struct {
	db      *gorm.DB
	feeds   *services.FeedService
	follows *services.FollowService
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(db *gorm.DB, feeds *services.FeedService, follows *services.FollowService) *ProfileController {
	return &ProfileController{db: db, feeds: feeds, follows: follows}
}

// Get returns an author's profile: their posts page, follower counters, and
// whether the current viewer (if any) already follows them.
func (p *ProfileController) Get(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	author, feed, err := p.feeds.Author(username, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	followers, err := p.follows.FollowerCount(author.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	following, err := p.follows.FollowingCount(author.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	// Viewer id is 0 for anonymous callers; IsFollowing then reports false
	// instead of failing.
	viewerID, _ := getUserID(ctx)
	isFollowing, err := p.follows.IsFollowing(viewerID, author.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := feedPayload(feed)
	payload["author"] = author
	payload["follower_count"] = followers
	payload["following_count"] = following
	payload["is_following"] = isFollowing
	utils.Success(ctx, payload)
}

// Posts returns the author feed without profile decoration.
func (p *ProfileController) Posts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	_, feed, err := p.feeds.Author(username, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, feedPayload(feed))
}

// Follow makes the authenticated user follow the target author.
// Re-following is a no-op; following yourself is rejected.
func (p *ProfileController) Follow(ctx *gin.Context) {
	target, ok := p.resolveTarget(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	if err := p.follows.Follow(userID, target.ID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"following": true})
}

// Unfollow removes the follow edge; removing an absent edge is a no-op.
func (p *ProfileController) Unfollow(ctx *gin.Context) {
	target, ok := p.resolveTarget(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	if err := p.follows.Unfollow(userID, target.ID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"following": false})
}

func (p *ProfileController) resolveTarget(ctx *gin.Context) (models.User, bool) {
	username := strings.TrimSpace(ctx.Param("username"))
	var user models.User
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "user not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load user")
		}
		return models.User{}, false
	}
	return user, true
}
