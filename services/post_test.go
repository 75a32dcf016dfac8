package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumeapp/plume/models"
)

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")
	group := createGroup(t, db, "Go", "go")

	post, err := posts.Create(author.ID, PostInput{Text: "hello world", GroupID: &group.ID})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
	assert.False(t, post.PubDate.IsZero(), "publication date is stamped at creation")
}

func TestCreatePostValidation(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")

	_, err := posts.Create(author.ID, PostInput{Text: "   "})
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreatePostUnknownGroup(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")

	missing := uint(99)
	_, err := posts.Create(author.ID, PostInput{Text: "hello", GroupID: &missing})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePostByNonAuthorLeavesRowUnchanged(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")
	intruder := createUser(t, db, "intruder")

	post := createPost(t, db, author.ID, "original", nil, time.Now())

	_, err := posts.Update(post.ID, intruder.ID, PostInput{Text: "hijacked"})
	require.ErrorIs(t, err, ErrForbidden)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Text, "storage state must be unchanged after a forbidden edit")
}

func TestUpdatePostKeepsPubDate(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")

	pubDate := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
	post := createPost(t, db, author.ID, "original", nil, pubDate)

	updated, err := posts.Update(post.ID, author.ID, PostInput{Text: "revised"})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Text)
	assert.True(t, updated.PubDate.Equal(pubDate), "pub_date is never part of an update")
}

func TestUpdatePostClearsGroup(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")
	group := createGroup(t, db, "Go", "go")

	post := createPost(t, db, author.ID, "grouped", &group.ID, time.Now())

	updated, err := posts.Update(post.ID, author.ID, PostInput{Text: "grouped", GroupID: nil})
	require.NoError(t, err)
	assert.Nil(t, updated.GroupID)
}

func TestGetPostWithCommentsInCreationOrder(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")
	commenter := createUser(t, db, "commenter")

	post := createPost(t, db, author.ID, "discussed", nil, time.Now())

	now := time.Now()
	second := models.Comment{PostID: post.ID, AuthorID: commenter.ID, Text: "second", Created: now}
	first := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first", Created: now.Add(-time.Minute)}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	got, err := posts.Get(post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "first", got.Comments[0].Text, "comments are oldest first")
	assert.Equal(t, "second", got.Comments[1].Text)
	assert.Equal(t, commenter.Username, got.Comments[1].Author.Username)
}

func TestGetMissingPost(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)

	_, err := posts.Get(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddCommentToMissingPost(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")

	_, err := posts.AddComment(42, author.ID, "into the void")
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count, "a failed comment must not leave a row behind")
}

func TestAddComment(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")
	commenter := createUser(t, db, "commenter")

	post := createPost(t, db, author.ID, "discussed", nil, time.Now())

	comment, err := posts.AddComment(post.ID, commenter.ID, "nice one")
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, commenter.ID, comment.AuthorID)
	assert.False(t, comment.Created.IsZero())

	_, err = posts.AddComment(post.ID, commenter.ID, "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostService(db)
	author := createUser(t, db, "author")

	post := createPost(t, db, author.ID, "temporary", nil, time.Now())
	_, err := posts.AddComment(post.ID, author.ID, "soon gone")
	require.NoError(t, err)

	require.ErrorIs(t, posts.Delete(post.ID, author.ID+1, false), ErrForbidden)
	require.NoError(t, posts.Delete(post.ID, author.ID, false))

	var postCount, commentCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	assert.Zero(t, postCount)
	assert.Zero(t, commentCount, "comments are cascade-deleted with their post")
}
