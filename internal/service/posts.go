package service

import (
	"context"
	"strings"
	"time"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// PostService issues post actions.
type PostService struct {
	d    *thunk.Dispatcher
	repo repository.PostRepository
}

// CreatePostInput is the payload of a new post.
type CreatePostInput struct {
	Content  models.PostContent
	Location *models.Location
}

// NewPostService creates a new post service
func NewPostService(d *thunk.Dispatcher, repo repository.PostRepository) *PostService {
	return &PostService{d: d, repo: repo}
}

func postsTable(s store.State) entity.Table[models.Post] { return s.Posts.Table }

func (s *PostService) FetchPostByID(ctx context.Context, id string, reload bool) (models.Post, error) {
	viewer := viewerID(s.d)
	return fetchOne(ctx, s.d, "posts/fetchOne", id, reload, postsTable, func(ctx context.Context) (*models.Post, error) {
		return s.repo.GetByID(ctx, id, viewer)
	})
}

// FetchAllPosts loads the feed. With reload, posts missing from the response
// are dropped from the store.
func (s *PostService) FetchAllPosts(ctx context.Context, reload bool) ([]models.Post, error) {
	viewer := viewerID(s.d)
	return fetchAll(ctx, s.d, "posts/fetchAll", reload, func(ctx context.Context) ([]models.Post, error) {
		return s.repo.List(ctx, repository.Page{Limit: fetchAllLimit}, viewer)
	})
}

// FetchMorePosts loads one more page of the feed without removing anything.
func (s *PostService) FetchMorePosts(ctx context.Context, page repository.Page) ([]models.Post, error) {
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "posts/fetchMore", func(ctx context.Context) ([]models.Post, error) {
		return s.repo.List(ctx, page, viewer)
	})
}

func (s *PostService) FetchPostsForProfile(ctx context.Context, profileID string) ([]models.Post, error) {
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "posts/fetchForProfile", func(ctx context.Context) ([]models.Post, error) {
		return s.repo.ListByProfile(ctx, profileID, repository.Page{Limit: fetchAllLimit}, viewer)
	})
}

func (s *PostService) SearchPosts(ctx context.Context, query string, page repository.Page) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "posts/search", func(ctx context.Context) ([]models.Post, error) {
		return s.repo.Search(ctx, query, page, viewer)
	})
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (models.Post, error) {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return models.Post{}, err
	}
	if in.Content.Kind == "" {
		in.Content.Kind = models.PostKindText
	}
	if in.Content.Kind == models.PostKindText && strings.TrimSpace(in.Content.Text) == "" {
		return models.Post{}, models.NewValidationError("Post text is required")
	}
	return thunk.Run(ctx, s.d, thunk.Thunk[models.Post]{
		Name: "posts/create",
		Call: func(ctx context.Context) (models.Post, error) {
			post := models.Post{
				ProfileID: profileID,
				Content:   in.Content,
				Location:  in.Location,
				CreatedAt: time.Now(),
			}
			if err := s.repo.Create(ctx, &post); err != nil {
				return models.Post{}, err
			}
			return post, nil
		},
		Fulfilled: func(p models.Post) store.Action { return store.CreateFulfilled[models.Post]{Entity: p} },
	})
}

func (s *PostService) UpdatePost(ctx context.Context, id string, changes models.PostChanges) error {
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "posts/update",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.Update(ctx, id, changes)
		},
		Fulfilled: func(none) store.Action {
			return store.UpdateFulfilled[models.Post, models.PostChanges]{ID: id, Changes: changes}
		},
	})
	return err
}

func (s *PostService) UpdatePostLikeStatus(ctx context.Context, id string, didLike bool) error {
	stats := statsOf(postsTable, func(p models.Post) models.Statistics { return p.Statistics }, id)
	return likeStatus[models.Post](ctx, s.d, "posts/updateLikeStatus", id, didLike, stats,
		func(ctx context.Context, profileID string) error {
			return s.repo.SetLiked(ctx, profileID, id, didLike)
		})
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "posts/delete",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.Delete(ctx, id)
		},
		Fulfilled: func(none) store.Action { return store.DeleteFulfilled[models.Post]{ID: id} },
	})
	return err
}
