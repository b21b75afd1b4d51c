package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/thunk"
)

func post(id string, likes uint, didLike bool) models.Post {
	return models.Post{
		ID:         id,
		ProfileID:  "bob",
		Content:    models.PostContent{Kind: models.PostKindText, Text: id},
		Statistics: models.Statistics{TotalLikes: likes, DidLike: didLike},
		CreatedAt:  time.Now(),
	}
}

func TestPostService_FetchPostByID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := post("p1", 0, false)
	f.posts.On("GetByID", mock.Anything, "p1", "").Return(&p, nil).Twice()

	got, err := f.svc.Posts.FetchPostByID(ctx, "p1", false)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, entity.StatusFulfilled, f.store.State().Posts.StatusOf("p1").Status)

	_, err = f.svc.Posts.FetchPostByID(ctx, "p1", false)
	assert.ErrorIs(t, err, thunk.ErrConditionFailed)

	_, err = f.svc.Posts.FetchPostByID(ctx, "p1", true)
	require.NoError(t, err)
	f.posts.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestPostService_FetchPostByIDRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.posts.On("GetByID", mock.Anything, "gone", "").Return(nil, models.NewNotFoundError("post", "gone")).Once()
	f.posts.On("GetByID", mock.Anything, "gone", "").Return(nil, nil).Once()

	_, err := f.svc.Posts.FetchPostByID(ctx, "gone", false)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	status := f.store.State().Posts.StatusOf("gone")
	assert.Equal(t, entity.StatusRejected, status.Status)
	assert.Error(t, status.Err)
	_, ok := f.store.State().Posts.SelectByID("gone")
	assert.False(t, ok)

	// rejected ids may be retried without reload
	_, err = f.svc.Posts.FetchPostByID(ctx, "gone", false)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostService_FetchAllReloadDropsStale(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	page := repository.Page{Limit: fetchAllLimit}
	f.posts.On("List", mock.Anything, page, "").Return([]models.Post{post("a", 0, false), post("b", 0, false)}, nil).Once()
	f.posts.On("List", mock.Anything, page, "").Return([]models.Post{post("b", 0, false)}, nil).Once()

	_, err := f.svc.Posts.FetchAllPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.State().Posts.Len())

	_, err = f.svc.Posts.FetchAllPosts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, f.store.State().Posts.SelectIDs())
	assert.Equal(t, entity.StatusIdle, f.store.State().Posts.StatusOf("a").Status)
}

func TestPostService_FetchAllSettlesPostsItOmits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	page := repository.Page{Limit: fetchAllLimit}
	a := post("a", 0, false)
	f.posts.On("ListByProfile", mock.Anything, "bob", page, "").Return([]models.Post{a}, nil).Once()
	f.posts.On("List", mock.Anything, page, "").Return([]models.Post{post("b", 0, false)}, nil).Twice()
	f.posts.On("GetByID", mock.Anything, "a", "").Return(nil, models.NewNotFoundError("post", "a")).Once()

	_, err := f.svc.Posts.FetchPostsForProfile(ctx, "bob")
	require.NoError(t, err)

	_, err = f.svc.Posts.FetchAllPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFulfilled, f.store.State().Posts.StatusOf("a").Status)

	_, err = f.svc.Posts.FetchAllPosts(ctx, true)
	require.NoError(t, err)
	assert.False(t, f.store.State().Posts.Has("a"))
	assert.Equal(t, entity.StatusIdle, f.store.State().Posts.StatusOf("a").Status)

	// the dropped post is no longer gated
	_, err = f.svc.Posts.FetchPostByID(ctx, "a", false)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	f.posts.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestPostService_FetchMoreNeverRemoves(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.posts.On("List", mock.Anything, repository.Page{Limit: fetchAllLimit}, "").
		Return([]models.Post{post("a", 0, false)}, nil).Once()
	f.posts.On("List", mock.Anything, repository.Page{Limit: 10, Offset: 10}, "").
		Return([]models.Post{post("z", 0, false)}, nil).Once()

	_, err := f.svc.Posts.FetchAllPosts(ctx, false)
	require.NoError(t, err)
	_, err = f.svc.Posts.FetchMorePosts(ctx, repository.Page{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "z"}, f.store.State().Posts.SelectIDs())
}

func TestPostService_SearchRequiresQuery(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Posts.SearchPosts(context.Background(), "   ", repository.Page{})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestPostService_LikeOptimisticAndRollback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signIn()
	p := post("p1", 5, false)
	f.posts.On("GetByID", mock.Anything, "p1", "alice").Return(&p, nil).Once()
	_, err := f.svc.Posts.FetchPostByID(ctx, "p1", false)
	require.NoError(t, err)

	f.posts.On("SetLiked", mock.Anything, "alice", "p1", true).Return(errors.New("offline")).Once()
	err = f.svc.Posts.UpdatePostLikeStatus(ctx, "p1", true)
	require.Error(t, err)
	got, _ := f.store.State().Posts.SelectByID("p1")
	assert.Equal(t, models.Statistics{TotalLikes: 5, DidLike: false}, got.Statistics)

	f.posts.On("SetLiked", mock.Anything, "alice", "p1", true).Return(nil).Once()
	require.NoError(t, f.svc.Posts.UpdatePostLikeStatus(ctx, "p1", true))
	got, _ = f.store.State().Posts.SelectByID("p1")
	assert.Equal(t, models.Statistics{TotalLikes: 6, DidLike: true}, got.Statistics)

	err = f.svc.Posts.UpdatePostLikeStatus(ctx, "p1", true)
	assert.ErrorIs(t, err, thunk.ErrConditionFailed)
}

func TestPostService_LikeRequiresSignIn(t *testing.T) {
	f := newFixture(t, nil)
	err := f.svc.Posts.UpdatePostLikeStatus(context.Background(), "p1", true)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}

func TestPostService_CreateUpdateDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signIn()

	f.posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.ProfileID == "alice" && p.Content.Text == "hello"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Post).ID = "new"
	}).Return(nil).Once()

	created, err := f.svc.Posts.CreatePost(ctx, CreatePostInput{Content: models.PostContent{Text: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, models.PostKindText, created.Content.Kind)
	assert.Equal(t, entity.StatusFulfilled, f.store.State().Posts.StatusOf("new").Status)

	loc := &models.Location{Latitude: 1, Longitude: 2}
	changes := models.PostChanges{Location: loc}
	f.posts.On("Update", mock.Anything, "new", changes).Return(nil).Once()
	require.NoError(t, f.svc.Posts.UpdatePost(ctx, "new", changes))
	got, _ := f.store.State().Posts.SelectByID("new")
	assert.Equal(t, loc, got.Location)
	assert.Equal(t, "hello", got.Content.Text)

	f.posts.On("Delete", mock.Anything, "new").Return(nil).Once()
	require.NoError(t, f.svc.Posts.DeletePost(ctx, "new"))
	_, ok := f.store.State().Posts.SelectByID("new")
	assert.False(t, ok)
	assert.Equal(t, entity.StatusIdle, f.store.State().Posts.StatusOf("new").Status)
}

func TestPostService_CreateValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.signIn()
	_, err := f.svc.Posts.CreatePost(context.Background(), CreatePostInput{})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestPostService_FetchPostsForProfile(t *testing.T) {
	f := newFixture(t, nil)
	f.posts.On("ListByProfile", mock.Anything, "bob", repository.Page{Limit: fetchAllLimit}, "").
		Return([]models.Post{post("p1", 0, false)}, nil).Once()

	posts, err := f.svc.Posts.FetchPostsForProfile(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.True(t, f.store.State().Posts.Has("p1"))
}
