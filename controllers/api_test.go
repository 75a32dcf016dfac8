package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plumeapp/plume/config"
	"github.com/plumeapp/plume/middleware"
	"github.com/plumeapp/plume/models"
	"github.com/plumeapp/plume/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:           "test-secret-key",
		AdminUsernames:      []string{"admin"},
		RateLimitPerMinute:  10000,
		PageCacheTTLSeconds: 1,
	})
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// setupTestRouter wires the API surface against a fresh database.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)

	feedService := services.NewFeedService(db)
	followService := services.NewFollowService(db)
	postService := services.NewPostService(db)
	groupService := services.NewGroupService(db)

	authController := NewAuthController(db)
	feedController := NewFeedController(feedService)
	postController := NewPostController(postService)
	profileController := NewProfileController(db, feedService, followService)
	groupController := NewGroupController(groupService)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", middleware.AuthRequired(), authController.Me)
	api.GET("/posts", feedController.Global)
	api.GET("/posts/:id", postController.Get)
	api.GET("/groups/:slug/posts", feedController.Group)
	api.GET("/users/:username/profile", middleware.OptionalAuth(), profileController.Get)
	api.GET("/users/:username/posts", profileController.Posts)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/feed", feedController.Followed)
	protected.POST("/posts", postController.Create)
	protected.PUT("/posts/:id", postController.Update)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/users/:username/follow", profileController.Follow)
	protected.DELETE("/users/:username/follow", profileController.Unfollow)
	protected.POST("/groups", groupController.Create)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, "register %s: %s", username, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupTestRouter(t)

	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alice"`)

	// Duplicate username is rejected
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", "", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowFlowOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)

	readerToken := registerUser(t, r, "reader")
	authorToken := registerUser(t, r, "writer")

	// Author publishes a post
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", authorToken, map[string]string{"text": "fresh ink"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Personal feed is empty before following anyone
	w = doJSON(t, r, http.MethodGet, "/api/v1/feed", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feedResp struct {
		Data struct {
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	assert.Zero(t, feedResp.Data.Pagination.Total)

	// Follow the author; the post shows up
	w = doJSON(t, r, http.MethodPost, "/api/v1/users/writer/follow", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/feed", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	assert.EqualValues(t, 1, feedResp.Data.Pagination.Total)
	assert.Contains(t, w.Body.String(), "fresh ink")

	// Unfollow empties it again
	w = doJSON(t, r, http.MethodDelete, "/api/v1/users/writer/follow", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/feed", readerToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	assert.Zero(t, feedResp.Data.Pagination.Total)
}

func TestSelfFollowRejected(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerUser(t, r, "narcissus")

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/narcissus/follow", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowUnknownUser(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerUser(t, r, "reader")

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/ghost/follow", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileCountersAndFollowState(t *testing.T) {
	r, _ := setupTestRouter(t)

	readerToken := registerUser(t, r, "reader")
	registerUser(t, r, "writer")

	w := doJSON(t, r, http.MethodPost, "/api/v1/users/writer/follow", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profileResp struct {
		Data struct {
			FollowerCount int64 `json:"follower_count"`
			IsFollowing   bool  `json:"is_following"`
		} `json:"data"`
	}

	// Authenticated viewer sees their own follow state
	w = doJSON(t, r, http.MethodGet, "/api/v1/users/writer/profile", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profileResp))
	assert.EqualValues(t, 1, profileResp.Data.FollowerCount)
	assert.True(t, profileResp.Data.IsFollowing)

	// Anonymous viewers get is_following=false, not an error
	w = doJSON(t, r, http.MethodGet, "/api/v1/users/writer/profile", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profileResp))
	assert.False(t, profileResp.Data.IsFollowing)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/ghost/profile", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupFeedUnknownSlugHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/groups/missing/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentOnMissingPost(t *testing.T) {
	r, db := setupTestRouter(t)
	token := registerUser(t, r, "commenter")

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts/999/comments", token, map[string]string{"text": "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestEditPostByNonAuthor(t *testing.T) {
	r, db := setupTestRouter(t)

	authorToken := registerUser(t, r, "writer")
	intruderToken := registerUser(t, r, "intruder")

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", authorToken, map[string]string{"text": "mine"})
	require.Equal(t, http.StatusOK, w.Code)

	var createResp struct {
		Data struct {
			Post models.Post `json:"post"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	postID := createResp.Data.Post.ID
	require.NotZero(t, postID)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", postID), intruderToken, map[string]string{"text": "stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, postID).Error)
	assert.Equal(t, "mine", stored.Text)
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	r, _ := setupTestRouter(t)

	userToken := registerUser(t, r, "mortal")
	adminToken := registerUser(t, r, "admin")

	w := doJSON(t, r, http.MethodPost, "/api/v1/groups", userToken, map[string]string{
		"title": "Go", "slug": "go",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/groups", adminToken, map[string]string{
		"title": "Go", "slug": "go",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
