package server

import (
	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/store"

	"github.com/gofiber/fiber/v2"
)

type authView struct {
	Status          store.AuthStatus `json:"status"`
	User            *models.User     `json:"user,omitempty"`
	Error           string           `json:"error,omitempty"`
	DidAbortSignOut bool             `json:"didAbortSignOut"`
}

type settingsView struct {
	store.SettingsState
	LocationQueryPrefs *store.LocationQueryPrefs `json:"locationQueryPrefs,omitempty"`
}

// stateView is the state as a client sees it: entity tables plus the
// transient statuses the persisted form leaves out.
type stateView struct {
	store.State
	Auth     authView                     `json:"auth"`
	Settings settingsView                 `json:"settings"`
	Statuses map[string]entity.Status     `json:"statuses"`
	Unread   int                          `json:"unreadNotifications"`
	Pending  map[string]map[string]string `json:"inFlight,omitempty"`
}

func inFlight[T any](t entity.Table[T]) map[string]string {
	out := map[string]string{}
	for _, id := range t.StatusIDs() {
		if st := t.StatusOf(id).Status; st.InFlight() {
			out[id] = string(st)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// GetState handles GET /api/state
func (s *Server) GetState(c *fiber.Ctx) error {
	st := s.d.State()

	auth := authView{
		Status:          st.Auth.Status,
		User:            st.Auth.User,
		DidAbortSignOut: st.Auth.DidAbortSignOut,
	}
	if st.Auth.Err != nil {
		auth.Error = st.Auth.Err.Error()
	}

	pending := map[string]map[string]string{}
	for name, ids := range map[string]map[string]string{
		"posts":          inFlight(st.Posts.Table),
		"comments":       inFlight(st.Comments.Table),
		"commentReplies": inFlight(st.CommentReplies.Table),
		"profiles":       inFlight(st.Profiles.Table),
		"products":       inFlight(st.Products.Table),
		"merchants":      inFlight(st.Merchants.Table),
	} {
		if ids != nil {
			pending[name] = ids
		}
	}

	return c.JSON(stateView{
		State:    st,
		Auth:     auth,
		Settings: settingsView{SettingsState: st.Settings, LocationQueryPrefs: st.Settings.LocationQueryPrefs},
		Statuses: map[string]entity.Status{
			"posts":          st.Posts.Collection.Status,
			"comments":       st.Comments.Collection.Status,
			"commentReplies": st.CommentReplies.Collection.Status,
			"profiles":       st.Profiles.Collection.Status,
			"products":       st.Products.Collection.Status,
			"merchants":      st.Merchants.Collection.Status,
			"notifications":  st.Notifications.Items.Collection.Status,
		},
		Unread:  store.UnreadNotificationCount(st),
		Pending: pending,
	})
}

// SetLocationQueryPrefs handles PUT /api/settings/location. An empty body
// clears the preferences.
func (s *Server) SetLocationQueryPrefs(c *fiber.Ctx) error {
	var prefs *store.LocationQueryPrefs
	if len(c.Body()) > 0 {
		prefs = &store.LocationQueryPrefs{}
		if err := parseBody(c, prefs); err != nil {
			return respondError(c, err)
		}
	}
	s.svc.Session.SetLocationQueryPrefs(prefs)
	return c.JSON(fiber.Map{"locationQueryPrefs": s.d.State().Settings.LocationQueryPrefs})
}

// SetExploreLayout handles PUT /api/settings/explore-layout
func (s *Server) SetExploreLayout(c *fiber.Ctx) error {
	var req struct {
		Layout string `json:"layout"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Layout == "" {
		return respondError(c, models.NewValidationError("layout is required"))
	}
	s.svc.Session.SetExploreLayout(req.Layout)
	return c.JSON(fiber.Map{"exploreLayout": s.d.State().Settings.ExploreLayout})
}
