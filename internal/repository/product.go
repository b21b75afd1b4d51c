package repository

import (
	"context"

	"gorm.io/gorm"

	"discovrr/internal/models"
)

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Product, error)
	List(ctx context.Context, page Page, viewerID string) ([]models.Product, error)
	ListForMerchant(ctx context.Context, merchantID string, viewerID string) ([]models.Product, error)
	SetLiked(ctx context.Context, profileID, id string, didLike bool) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) query(ctx context.Context, viewerID string) *gorm.DB {
	return selectWithDidLike(r.db.WithContext(ctx).Model(&models.Product{}), "products", models.SubjectProduct, viewerID)
}

func (r *productRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Product, error) {
	var product models.Product
	if err := r.query(ctx, viewerID).Where("products.id = ?", id).First(&product).Error; err != nil {
		return nil, mapError(err, "product", id)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, page Page, viewerID string) ([]models.Product, error) {
	var products []models.Product
	err := page.apply(r.query(ctx, viewerID)).Order("products.name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) ListForMerchant(ctx context.Context, merchantID string, viewerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx, viewerID).
		Where("products.merchant_id = ?", merchantID).
		Order("products.name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	return setLike(ctx, r.db, models.SubjectProduct, "products", profileID, id, didLike)
}
