package service

import (
	"context"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// ProductService issues product actions.
type ProductService struct {
	d    *thunk.Dispatcher
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(d *thunk.Dispatcher, repo repository.ProductRepository) *ProductService {
	return &ProductService{d: d, repo: repo}
}

func productsTable(s store.State) entity.Table[models.Product] { return s.Products.Table }

func (s *ProductService) FetchProductByID(ctx context.Context, id string, reload bool) (models.Product, error) {
	viewer := viewerID(s.d)
	return fetchOne(ctx, s.d, "products/fetchOne", id, reload, productsTable, func(ctx context.Context) (*models.Product, error) {
		return s.repo.GetByID(ctx, id, viewer)
	})
}

func (s *ProductService) FetchAllProducts(ctx context.Context, reload bool) ([]models.Product, error) {
	viewer := viewerID(s.d)
	return fetchAll(ctx, s.d, "products/fetchAll", reload, func(ctx context.Context) ([]models.Product, error) {
		return s.repo.List(ctx, repository.Page{Limit: fetchAllLimit}, viewer)
	})
}

func (s *ProductService) FetchProductsForMerchant(ctx context.Context, merchantID string) ([]models.Product, error) {
	viewer := viewerID(s.d)
	return fetchMany(ctx, s.d, "products/fetchForMerchant", func(ctx context.Context) ([]models.Product, error) {
		return s.repo.ListForMerchant(ctx, merchantID, viewer)
	})
}

func (s *ProductService) UpdateProductLikeStatus(ctx context.Context, id string, didLike bool) error {
	stats := statsOf(productsTable, func(p models.Product) models.Statistics { return p.Statistics }, id)
	return likeStatus[models.Product](ctx, s.d, "products/updateLikeStatus", id, didLike, stats,
		func(ctx context.Context, profileID string) error {
			return s.repo.SetLiked(ctx, profileID, id, didLike)
		})
}

// MerchantService issues merchant actions.
type MerchantService struct {
	d    *thunk.Dispatcher
	repo repository.MerchantRepository
}

// NewMerchantService creates a new merchant service
func NewMerchantService(d *thunk.Dispatcher, repo repository.MerchantRepository) *MerchantService {
	return &MerchantService{d: d, repo: repo}
}

func merchantsTable(s store.State) entity.Table[models.Merchant] { return s.Merchants.Table }

func (s *MerchantService) FetchMerchantByID(ctx context.Context, id string, reload bool) (models.Merchant, error) {
	viewer := viewerID(s.d)
	return fetchOne(ctx, s.d, "merchants/fetchOne", id, reload, merchantsTable, func(ctx context.Context) (*models.Merchant, error) {
		return s.repo.GetByID(ctx, id, viewer)
	})
}

func (s *MerchantService) FetchAllMerchants(ctx context.Context, reload bool) ([]models.Merchant, error) {
	viewer := viewerID(s.d)
	return fetchAll(ctx, s.d, "merchants/fetchAll", reload, func(ctx context.Context) ([]models.Merchant, error) {
		return s.repo.List(ctx, repository.Page{Limit: fetchAllLimit}, viewer)
	})
}

func (s *MerchantService) UpdateMerchantLikeStatus(ctx context.Context, id string, didLike bool) error {
	stats := statsOf(merchantsTable, func(m models.Merchant) models.Statistics { return m.Statistics }, id)
	return likeStatus[models.Merchant](ctx, s.d, "merchants/updateLikeStatus", id, didLike, stats,
		func(ctx context.Context, profileID string) error {
			return s.repo.SetLiked(ctx, profileID, id, didLike)
		})
}
