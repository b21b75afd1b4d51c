package server

import (
	"discovrr/internal/models"
	"discovrr/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// sessionResponse answers a successful sign-in with the user and the bearer
// token that unlocks protected routes.
func (s *Server) sessionResponse(c *fiber.Ctx, status int, user models.User) error {
	return c.Status(status).JSON(fiber.Map{
		"user":  user,
		"token": s.d.State().Auth.SessionID,
	})
}

// SignIn handles POST /api/auth/sign-in
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.svc.Auth.SignInWithEmail(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.sessionResponse(c, fiber.StatusOK, user)
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email       string             `json:"email"`
		Password    string             `json:"password"`
		DisplayName string             `json:"displayName"`
		Username    string             `json:"username"`
		Kind        models.ProfileKind `json:"kind"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := s.svc.Auth.RegisterNewAccount(c.UserContext(), repository.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Kind:        req.Kind,
	})
	if err != nil {
		return respondError(c, err)
	}
	return s.sessionResponse(c, fiber.StatusCreated, user)
}

// ResumeSession handles POST /api/auth/resume
func (s *Server) ResumeSession(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Token == "" {
		req.Token = s.d.State().Auth.SessionID
	}
	if req.Token == "" {
		return respondError(c, models.NewUnauthorizedError("No session to resume"))
	}

	user, err := s.svc.Auth.SignInWithToken(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}
	return s.sessionResponse(c, fiber.StatusOK, user)
}

// SignOut handles POST /api/auth/sign-out
func (s *Server) SignOut(c *fiber.Ctx) error {
	var req struct {
		ResetPushToken bool `json:"resetPushToken"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	s.stopListening()
	if err := s.svc.Auth.SignOut(c.UserContext(), req.ResetPushToken); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
