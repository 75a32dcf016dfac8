package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumeapp/plume/services"
	"github.com/plumeapp/plume/utils"
)

// GroupController manages topic groups. Creation and deletion are admin
// operations; listing is public.
type GroupController struct {
	groups *services.GroupService
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(groups *services.GroupService) *GroupController {
	return &GroupController{groups: groups}
}

// List returns all groups.
func (g *GroupController) List(ctx *gin.Context) {
	groups, err := g.groups.List()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// Create adds a group. Admin only.
func (g *GroupController) Create(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "admin privileges required")
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Slug        string `json:"slug" binding:"required,max=20"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	group, err := g.groups.Create(req.Title, req.Slug, req.Description)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"group": group})
}

// Delete removes a group. Its posts survive with a cleared group reference.
// Admin only.
func (g *GroupController) Delete(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "admin privileges required")
		return
	}

	if err := g.groups.Delete(ctx.Param("slug")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "group deleted"})
}
