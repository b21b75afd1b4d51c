package server

import (
	"discovrr/internal/models"
	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

type messageRequest struct {
	Message string `json:"message"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID := c.Params("id")
	if _, err := s.svc.Comments.FetchCommentsForPost(c.UserContext(), postID); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, store.CommentsForPost(st, postID), st.Comments.Collection)
}

// GetComment handles GET /api/comments/:id?reload=
func (s *Server) GetComment(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Comments.FetchCommentByID(c.UserContext(), id, wantsReload(c)); settled(err) != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Comments.Table, id)
}

// GetReplies handles GET /api/comments/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID := c.Params("id")
	if _, err := s.svc.Comments.FetchRepliesForComment(c.UserContext(), commentID); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, store.RepliesForComment(st, commentID), st.CommentReplies.Collection)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req messageRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	comment, err := s.svc.Comments.CreateComment(c.UserContext(), c.Params("id"), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": comment})
}

// CreateReply handles POST /api/comments/:id/replies. The parent comment is
// loaded first when the store does not hold it yet.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	commentID := c.Params("id")
	var req messageRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	parent, ok := s.d.State().Comments.SelectByID(commentID)
	if !ok {
		fetched, err := s.svc.Comments.FetchCommentByID(c.UserContext(), commentID, false)
		if err != nil {
			return respondError(c, err)
		}
		parent = fetched
	}

	reply, err := s.svc.Comments.CreateReply(c.UserContext(), parent.PostID, commentID, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": reply})
}

// UpdateComment handles PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id := c.Params("id")
	var changes models.CommentChanges
	if err := parseBody(c, &changes); err != nil {
		return respondError(c, err)
	}
	if err := s.svc.Comments.UpdateComment(c.UserContext(), id, changes); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Comments.Table, id)
}

// LikeComment handles PUT /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id := c.Params("id")
	didLike, err := parseLike(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := settled(s.svc.Comments.UpdateCommentLikeStatus(c.UserContext(), id, didLike)); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Comments.Table, id)
}

// LikeReply handles PUT /api/replies/:id/like
func (s *Server) LikeReply(c *fiber.Ctx) error {
	id := c.Params("id")
	didLike, err := parseLike(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := settled(s.svc.Comments.UpdateReplyLikeStatus(c.UserContext(), id, didLike)); err != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().CommentReplies.Table, id)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.svc.Comments.DeleteComment(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
