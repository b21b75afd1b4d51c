package server

import (
	"discovrr/internal/models"
	"discovrr/internal/service"
	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?reload=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	if _, err := s.svc.Posts.FetchAllPosts(c.UserContext(), wantsReload(c)); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, st.Posts.SelectAll(), st.Posts.Collection)
}

// GetMorePosts handles GET /api/posts/more?limit=&offset=
func (s *Server) GetMorePosts(c *fiber.Ctx) error {
	posts, err := s.svc.Posts.FetchMorePosts(c.UserContext(), parsePage(c, 20))
	if err != nil {
		return respondError(c, err)
	}
	return listResponse(c, posts, s.d.State().Posts.Collection)
}

// SearchPosts handles GET /api/posts/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.svc.Posts.SearchPosts(c.UserContext(), c.Query("q"), parsePage(c, 10))
	if err != nil {
		return respondError(c, err)
	}
	return listResponse(c, posts, s.d.State().Posts.Collection)
}

// GetPost handles GET /api/posts/:id?reload=
func (s *Server) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Posts.FetchPostByID(c.UserContext(), id, wantsReload(c)); settled(err) != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Posts.Table, id)
}

// GetProfilePosts handles GET /api/profiles/:id/posts
func (s *Server) GetProfilePosts(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Posts.FetchPostsForProfile(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, store.PostsByProfile(st, id), st.Posts.Collection)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content  models.PostContent `json:"content"`
		Location *models.Location   `json:"location,omitempty"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := s.svc.Posts.CreatePost(c.UserContext(), service.CreatePostInput{
		Content:  req.Content,
		Location: req.Location,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": post})
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id := c.Params("id")
	var changes models.PostChanges
	if err := parseBody(c, &changes); err != nil {
		return respondError(c, err)
	}
	if err := s.svc.Posts.UpdatePost(c.UserContext(), id, changes); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Posts.Table, id)
}

// LikePost handles PUT /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id := c.Params("id")
	didLike, err := parseLike(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := settled(s.svc.Posts.UpdatePostLikeStatus(c.UserContext(), id, didLike)); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Posts.Table, id)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.svc.Posts.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseLike(c *fiber.Ctx) (bool, error) {
	var req likeRequest
	if err := parseBody(c, &req); err != nil {
		return false, err
	}
	return req.value()
}
