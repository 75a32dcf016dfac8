package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumeapp/plume/services"
	"github.com/plumeapp/plume/utils"
)

// FeedController serves the paginated post listings. Public feeds are cached
// in Redis under a fixed TTL; pages simply age out, there is no write-side
// invalidation.
type FeedController struct {
	feeds *services.FeedService
}

// NewFeedController creates a new FeedController instance.
func NewFeedController(feeds *services.FeedService) *FeedController {
	return &FeedController{feeds: feeds}
}

// Global returns all posts, newest first.
func (f *FeedController) Global(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:feed:global:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	feed, err := f.feeds.Global(page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := feedPayload(feed)
	utils.CacheSetJSON(cacheKey, cacheEnvelope{Code: 0, Message: "success", Data: payload}, utils.PageCacheTTL())
	utils.Success(ctx, payload)
}

// Group returns posts published under a group slug; unknown slugs are 404.
func (f *FeedController) Group(ctx *gin.Context) {
	slug := ctx.Param("slug")
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:feed:group:%s:page=%d:size=%d", slug, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	group, feed, err := f.feeds.Group(slug, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	payload := feedPayload(feed)
	payload["group"] = group
	utils.CacheSetJSON(cacheKey, cacheEnvelope{Code: 0, Message: "success", Data: payload}, utils.PageCacheTTL())
	utils.Success(ctx, payload)
}

// Followed returns the personal feed: posts by every author the caller
// follows. Following nobody yields an empty page. Never cached, the result
// is viewer specific.
func (f *FeedController) Followed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	feed, err := f.feeds.Followed(userID, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, feedPayload(feed))
}
