package server

import (
	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetProducts handles GET /api/products?reload=
func (s *Server) GetProducts(c *fiber.Ctx) error {
	if _, err := s.svc.Products.FetchAllProducts(c.UserContext(), wantsReload(c)); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, st.Products.SelectAll(), st.Products.Collection)
}

// GetProduct handles GET /api/products/:id?reload=
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Products.FetchProductByID(c.UserContext(), id, wantsReload(c)); settled(err) != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Products.Table, id)
}

// LikeProduct handles PUT /api/products/:id/like
func (s *Server) LikeProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	didLike, err := parseLike(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := settled(s.svc.Products.UpdateProductLikeStatus(c.UserContext(), id, didLike)); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Products.Table, id)
}

// GetMerchants handles GET /api/merchants?reload=
func (s *Server) GetMerchants(c *fiber.Ctx) error {
	if _, err := s.svc.Merchants.FetchAllMerchants(c.UserContext(), wantsReload(c)); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, st.Merchants.SelectAll(), st.Merchants.Collection)
}

// GetMerchant handles GET /api/merchants/:id?reload=
func (s *Server) GetMerchant(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Merchants.FetchMerchantByID(c.UserContext(), id, wantsReload(c)); settled(err) != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Merchants.Table, id)
}

// GetMerchantProducts handles GET /api/merchants/:id/products
func (s *Server) GetMerchantProducts(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Products.FetchProductsForMerchant(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, store.ProductsForMerchant(st, id), st.Products.Collection)
}

// LikeMerchant handles PUT /api/merchants/:id/like
func (s *Server) LikeMerchant(c *fiber.Ctx) error {
	id := c.Params("id")
	didLike, err := parseLike(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := settled(s.svc.Merchants.UpdateMerchantLikeStatus(c.UserContext(), id, didLike)); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Merchants.Table, id)
}
