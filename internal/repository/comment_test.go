package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovrr/internal/models"
)

func TestCommentRepository_RepliesAreSeparate(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	post := newPost("alice", "thread", time.Now())
	require.NoError(t, posts.Create(ctx, post))

	top := &models.Comment{PostID: post.ID, ProfileID: "bob", Message: "first"}
	require.NoError(t, repo.Create(ctx, top))
	reply := &models.Comment{PostID: post.ID, ParentID: &top.ID, ProfileID: "alice", Message: "thanks"}
	require.NoError(t, repo.Create(ctx, reply))

	comments, err := repo.ListForPost(ctx, post.ID, "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, top.ID, comments[0].ID)

	replies, err := repo.ListReplies(ctx, top.ID, "")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "thanks", replies[0].Message)

	require.NoError(t, repo.Delete(ctx, top.ID))
	replies, err = repo.ListReplies(ctx, top.ID, "")
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestCommentRepository_CreateRequiresParent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Comment{PostID: "nope", ProfileID: "bob", Message: "hi"})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	post := newPost("alice", "x", time.Now())
	require.NoError(t, NewPostRepository(db).Create(ctx, post))
	ghost := "ghost"
	err = repo.Create(ctx, &models.Comment{PostID: post.ID, ParentID: &ghost, ProfileID: "bob", Message: "hi"})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestCommentRepository_UpdateAndLike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	post := newPost("alice", "x", time.Now())
	require.NoError(t, NewPostRepository(db).Create(ctx, post))
	c := &models.Comment{PostID: post.ID, ProfileID: "bob", Message: "typo"}
	require.NoError(t, repo.Create(ctx, c))

	msg := "fixed"
	require.NoError(t, repo.Update(ctx, c.ID, models.CommentChanges{Message: &msg}))
	require.NoError(t, repo.SetLiked(ctx, "alice", c.ID, true))

	got, err := repo.GetByID(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Message)
	assert.True(t, got.Statistics.DidLike)
	assert.Equal(t, uint(1), got.Statistics.TotalLikes)

	err = repo.Update(ctx, "missing", models.CommentChanges{Message: &msg})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
