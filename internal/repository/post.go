package repository

import (
	"context"

	"gorm.io/gorm"

	"discovrr/internal/models"
)

// PostRepository defines the interface for post data operations.
// viewerID is the profile DidLike is computed for; empty means anonymous.
type PostRepository interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	List(ctx context.Context, page Page, viewerID string) ([]models.Post, error)
	ListByProfile(ctx context.Context, profileID string, page Page, viewerID string) ([]models.Post, error)
	Search(ctx context.Context, query string, page Page, viewerID string) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id string, changes models.PostChanges) error
	SetLiked(ctx context.Context, profileID, id string, didLike bool) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) query(ctx context.Context, viewerID string) *gorm.DB {
	return selectWithDidLike(r.db.WithContext(ctx).Model(&models.Post{}), "posts", models.SubjectPost, viewerID)
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	var post models.Post
	if err := r.query(ctx, viewerID).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, mapError(err, "post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, page Page, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	err := page.apply(r.query(ctx, viewerID)).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByProfile(ctx context.Context, profileID string, page Page, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	err := page.apply(r.query(ctx, viewerID)).
		Where("posts.profile_id = ?", profileID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(ctx context.Context, query string, page Page, viewerID string) ([]models.Post, error) {
	var posts []models.Post
	like := containsPattern(query)
	err := page.apply(r.query(ctx, viewerID)).
		Where("LOWER(posts.content) LIKE LOWER(?) OR LOWER(posts.location) LIKE LOWER(?)", like, like).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return mapError(r.db.WithContext(ctx).Create(post).Error, "post", post.ID)
}

func (r *postRepository) Update(ctx context.Context, id string, changes models.PostChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return mapError(err, "post", id)
		}
		post = post.ApplyChanges(changes)
		return tx.Model(&post).Select("content", "location", "updated_at").
			Updates(&post).Error
	})
}

func (r *postRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	return setLike(ctx, r.db, models.SubjectPost, "posts", profileID, id, didLike)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("post", id)
		}
		if err := tx.Where("subject_kind = ? AND subject_id = ?", models.SubjectPost, id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
	})
}
