package repository

import (
	"context"

	"gorm.io/gorm"

	"discovrr/internal/models"
)

// MerchantRepository defines the interface for merchant data operations.
type MerchantRepository interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Merchant, error)
	List(ctx context.Context, page Page, viewerID string) ([]models.Merchant, error)
	SetLiked(ctx context.Context, profileID, id string, didLike bool) error
}

type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) query(ctx context.Context, viewerID string) *gorm.DB {
	return selectWithDidLike(r.db.WithContext(ctx).Model(&models.Merchant{}), "merchants", models.SubjectMerchant, viewerID)
}

func (r *merchantRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.query(ctx, viewerID).Where("merchants.id = ?", id).First(&merchant).Error; err != nil {
		return nil, mapError(err, "merchant", id)
	}
	return &merchant, nil
}

func (r *merchantRepository) List(ctx context.Context, page Page, viewerID string) ([]models.Merchant, error) {
	var merchants []models.Merchant
	err := page.apply(r.query(ctx, viewerID)).Order("merchants.short_name ASC").Find(&merchants).Error
	return merchants, err
}

func (r *merchantRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	return setLike(ctx, r.db, models.SubjectMerchant, "merchants", profileID, id, didLike)
}
