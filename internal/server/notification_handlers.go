package server

import (
	"context"

	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	if _, err := s.svc.Notifications.FetchNotifications(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	st := s.d.State()
	items := st.Notifications.Items.SelectAll()
	return c.JSON(fiber.Map{
		"data":                items,
		"status":              st.Notifications.Items.Collection.Status,
		"unread":              store.UnreadNotificationCount(st),
		"didRegisterFCMToken": st.Notifications.DidRegisterFCMToken,
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	if err := s.svc.Notifications.MarkNotificationRead(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": store.UnreadNotificationCount(s.d.State())})
}

// ClearNotifications handles DELETE /api/notifications
func (s *Server) ClearNotifications(c *fiber.Ctx) error {
	if err := s.svc.Notifications.ClearNotifications(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListenNotifications handles POST /api/notifications/listen. Pushes for the
// signed-in profile land in the store until sign-out or shutdown.
func (s *Server) ListenNotifications(c *fiber.Ctx) error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listenCancel != nil {
		s.listenCancel()
		s.listenCancel = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.svc.Notifications.Listen(ctx); err != nil {
		cancel()
		return respondError(c, err)
	}
	s.listenCancel = cancel
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) stopListening() {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listenCancel != nil {
		s.listenCancel()
		s.listenCancel = nil
	}
}
