package repository

import (
	"context"

	"gorm.io/gorm"

	"discovrr/internal/models"
)

// CommentRepository defines the interface for comment and reply operations.
type CommentRepository interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID string, viewerID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, commentID string, viewerID string) ([]models.Reply, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id string, changes models.CommentChanges) error
	SetLiked(ctx context.Context, profileID, id string, didLike bool) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) query(ctx context.Context, viewerID string) *gorm.DB {
	return selectWithDidLike(r.db.WithContext(ctx).Model(&models.Comment{}), "comments", models.SubjectComment, viewerID)
}

func (r *commentRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.query(ctx, viewerID).Where("comments.id = ?", id).First(&comment).Error; err != nil {
		return nil, mapError(err, "comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListForPost(ctx context.Context, postID string, viewerID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.query(ctx, viewerID).
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID).
		Order("comments.created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID string, viewerID string) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.query(ctx, viewerID).
		Where("comments.parent_id = ?", commentID).
		Order("comments.created_at ASC").
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("post", comment.PostID)
		}
		if comment.IsReply() {
			if err := tx.Model(&models.Comment{}).
				Where("id = ? AND post_id = ?", *comment.ParentID, comment.PostID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return models.NewNotFoundError("comment", *comment.ParentID)
			}
		}
		return mapError(tx.Create(comment).Error, "comment", comment.ID)
	})
}

func (r *commentRepository) Update(ctx context.Context, id string, changes models.CommentChanges) error {
	if changes.Message == nil {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("message", *changes.Message)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("comment", id)
	}
	return nil
}

func (r *commentRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	return setLike(ctx, r.db, models.SubjectComment, "comments", profileID, id, didLike)
}

// Delete removes the comment together with its replies.
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? OR parent_id = ?", id, id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("comment", id)
		}
		return nil
	})
}
