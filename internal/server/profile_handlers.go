package server

import (
	"discovrr/internal/models"
	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/profiles?reload=
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	if _, err := s.svc.Profiles.FetchAllProfiles(c.UserContext(), wantsReload(c)); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	return listResponse(c, st.Profiles.SelectAll(), st.Profiles.Collection)
}

// SearchProfiles handles GET /api/profiles/search?q=
func (s *Server) SearchProfiles(c *fiber.Ctx) error {
	profiles, err := s.svc.Profiles.SearchProfiles(c.UserContext(), c.Query("q"), parsePage(c, 10))
	if err != nil {
		return respondError(c, err)
	}
	return listResponse(c, profiles, s.d.State().Profiles.Collection)
}

// GetProfile handles GET /api/profiles/:id?reload=
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.Profiles.FetchProfileByID(c.UserContext(), id, wantsReload(c)); settled(err) != nil {
		return respondError(c, err)
	}
	return entityResponse(c, s.d.State().Profiles.Table, id)
}

// UpdateMyProfile handles PATCH /api/profiles/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var changes models.ProfileChanges
	if err := parseBody(c, &changes); err != nil {
		return respondError(c, err)
	}
	if err := s.svc.Profiles.UpdateProfile(c.UserContext(), changes); err != nil {
		return respondError(c, err)
	}
	profile, _ := store.CurrentProfile(s.d.State())
	return c.JSON(fiber.Map{"data": profile})
}

// FollowProfile handles PUT /api/profiles/:id/follow
func (s *Server) FollowProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		DidFollow *bool `json:"didFollow"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.DidFollow == nil {
		return respondError(c, models.NewValidationError("didFollow is required"))
	}
	if err := settled(s.svc.Profiles.UpdateProfileFollowStatus(c.UserContext(), id, *req.DidFollow)); err != nil {
		return respondError(c, err)
	}

	st := s.d.State()
	viewer, _ := c.Locals("profileID").(string)
	return c.JSON(fiber.Map{
		"followeeId":  id,
		"isFollowing": store.IsFollowing(st, viewer, id),
	})
}

// SetFCMToken handles PUT /api/profiles/me/fcm-token
func (s *Server) SetFCMToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	viewer, _ := c.Locals("profileID").(string)
	if err := s.svc.Profiles.SetFCMRegistrationTokenForProfile(c.UserContext(), viewer, req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"didRegisterFCMToken": s.d.State().Notifications.DidRegisterFCMToken})
}
