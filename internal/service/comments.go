package service

import (
	"context"
	"strings"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// CommentService issues comment and reply actions. Replies are comments with
// a parent and are kept in their own slice.
type CommentService struct {
	d    *thunk.Dispatcher
	repo repository.CommentRepository
}

// NewCommentService creates a new comment service
func NewCommentService(d *thunk.Dispatcher, repo repository.CommentRepository) *CommentService {
	return &CommentService{d: d, repo: repo}
}

func commentsTable(s store.State) entity.Table[models.Comment] { return s.Comments.Table }
func repliesTable(s store.State) entity.Table[models.Reply]    { return s.CommentReplies.Table }

func (s *CommentService) FetchCommentByID(ctx context.Context, id string, reload bool) (models.Comment, error) {
	viewer := viewerID(s.d)
	return fetchOne(ctx, s.d, "comments/fetchOne", id, reload, commentsTable, func(ctx context.Context) (*models.Comment, error) {
		return s.repo.GetByID(ctx, id, viewer)
	})
}

func (s *CommentService) FetchCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "comments/fetchForPost", func(ctx context.Context) ([]models.Comment, error) {
		return s.repo.ListForPost(ctx, postID, viewer)
	})
}

func (s *CommentService) FetchRepliesForComment(ctx context.Context, commentID string) ([]models.Reply, error) {
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "commentReplies/fetchForComment", func(ctx context.Context) ([]models.Reply, error) {
		return s.repo.ListReplies(ctx, commentID, viewer)
	})
}

func (s *CommentService) create(ctx context.Context, postID string, parentID *string, message string) (models.Comment, error) {
	profileID, err := requireViewer(s.d)
	if err != nil {
		return models.Comment{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Comment{}, models.NewValidationError("Comment message is required")
	}
	c := models.Comment{PostID: postID, ParentID: parentID, ProfileID: profileID, Message: message}
	if err := s.repo.Create(ctx, &c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

func (s *CommentService) CreateComment(ctx context.Context, postID, message string) (models.Comment, error) {
	return thunk.Run(ctx, s.d, thunk.Thunk[models.Comment]{
		Name: "comments/create",
		Call: func(ctx context.Context) (models.Comment, error) {
			return s.create(ctx, postID, nil, message)
		},
		Fulfilled: func(c models.Comment) store.Action { return store.CreateFulfilled[models.Comment]{Entity: c} },
	})
}

func (s *CommentService) CreateReply(ctx context.Context, postID, commentID, message string) (models.Reply, error) {
	return thunk.Run(ctx, s.d, thunk.Thunk[models.Reply]{
		Name: "commentReplies/create",
		Call: func(ctx context.Context) (models.Reply, error) {
			parent := commentID
			c, err := s.create(ctx, postID, &parent, message)
			return models.Reply(c), err
		},
		Fulfilled: func(r models.Reply) store.Action { return store.CreateFulfilled[models.Reply]{Entity: r} },
	})
}

func (s *CommentService) UpdateComment(ctx context.Context, id string, changes models.CommentChanges) error {
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "comments/update",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.Update(ctx, id, changes)
		},
		Fulfilled: func(none) store.Action {
			return store.UpdateFulfilled[models.Comment, models.CommentChanges]{ID: id, Changes: changes}
		},
	})
	return err
}

func (s *CommentService) UpdateCommentLikeStatus(ctx context.Context, id string, didLike bool) error {
	stats := statsOf(commentsTable, func(c models.Comment) models.Statistics { return c.Statistics }, id)
	return likeStatus[models.Comment](ctx, s.d, "comments/updateLikeStatus", id, didLike, stats,
		func(ctx context.Context, profileID string) error {
			return s.repo.SetLiked(ctx, profileID, id, didLike)
		})
}

func (s *CommentService) UpdateReplyLikeStatus(ctx context.Context, id string, didLike bool) error {
	stats := statsOf(repliesTable, func(r models.Reply) models.Statistics { return r.Statistics }, id)
	return likeStatus[models.Reply](ctx, s.d, "commentReplies/updateLikeStatus", id, didLike, stats,
		func(ctx context.Context, profileID string) error {
			return s.repo.SetLiked(ctx, profileID, id, didLike)
		})
}

// DeleteComment removes a comment and, remotely, its replies. Replies
// already loaded are dropped from their slice too.
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "comments/delete",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.Delete(ctx, id)
		},
		Fulfilled: func(none) store.Action { return store.DeleteFulfilled[models.Comment]{ID: id} },
	})
	if err != nil {
		return err
	}
	for _, r := range store.RepliesForComment(s.d.State(), id) {
		s.d.Dispatch(store.DeleteFulfilled[models.Reply]{ID: r.ID})
	}
	return nil
}
