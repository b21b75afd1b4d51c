// Package store holds the application state and the reducers that mutate it.
// State is only changed by dispatching an Action to a Store.
package store

import (
	"discovrr/internal/entity"
	"discovrr/internal/models"
)

// Slice is one normalized entity store. Collection tracks whole-collection
// fetches; per-id statuses live in the embedded table. Only the table is
// serialized.
type Slice[T Entity] struct {
	entity.Table[T]
	Collection entity.FetchStatus `json:"-"`
	// bulk holds the ids marked in flight by the running collection fetch.
	bulk []string
}

// Adapters used by the entity slices.
var (
	PostAdapter = entity.Adapter[models.Post]{
		ID:    func(p models.Post) string { return p.ID },
		Less:  models.Post.NewerThan,
		Merge: models.Post.MergeFrom,
	}
	CommentAdapter = entity.Adapter[models.Comment]{
		ID:    func(c models.Comment) string { return c.ID },
		Merge: models.Comment.MergeFrom,
	}
	ReplyAdapter = entity.Adapter[models.Reply]{
		ID:    func(r models.Reply) string { return r.ID },
		Merge: models.Reply.MergeFrom,
	}
	ProfileAdapter = entity.Adapter[models.Profile]{
		ID:    func(p models.Profile) string { return p.ID },
		Merge: models.Profile.MergeFrom,
	}
	ProductAdapter = entity.Adapter[models.Product]{
		ID:    func(p models.Product) string { return p.ID },
		Merge: models.Product.MergeFrom,
	}
	MerchantAdapter = entity.Adapter[models.Merchant]{
		ID:    func(m models.Merchant) string { return m.ID },
		Merge: models.Merchant.MergeFrom,
	}
	NotificationAdapter = entity.Adapter[models.Notification]{
		ID: func(n models.Notification) string { return n.ID },
		Less: func(a, b models.Notification) bool {
			return a.CreatedAt.After(b.CreatedAt)
		},
		Merge: models.Notification.MergeFrom,
	}
)

func emptySlice[T Entity](a entity.Adapter[T]) Slice[T] {
	return Slice[T]{Table: a.Empty(), Collection: entity.Idle}
}

// NotificationsState is the notification list plus the push token flag.
type NotificationsState struct {
	Items               Slice[models.Notification] `json:"items"`
	DidRegisterFCMToken bool                       `json:"didRegisterFCMToken"`
}

// AuthStatus is the state of the auth/session machine.
type AuthStatus string

const (
	AuthStatusIdle        AuthStatus = "idle"
	AuthStatusSigningIn   AuthStatus = "signing-in"
	AuthStatusRegistering AuthStatus = "registering"
	AuthStatusSigningOut  AuthStatus = "signing-out"
	AuthStatusFulfilled   AuthStatus = "fulfilled"
	AuthStatusRejected    AuthStatus = "rejected"
)

// AuthState is the signed-in session. Status and Err are transient.
type AuthState struct {
	Status          AuthStatus   `json:"-"`
	User            *models.User `json:"user,omitempty"`
	SessionID       string       `json:"sessionId,omitempty"`
	Err             error        `json:"-"`
	DidAbortSignOut bool         `json:"-"`
}

// SignedIn reports whether a user is held by the session.
func (a AuthState) SignedIn() bool {
	return a.User != nil
}

// LocationQueryPrefs narrows location-based searches.
type LocationQueryPrefs struct {
	SearchRadiusKm  uint             `json:"searchRadiusKm"`
	CurrentLocation *models.Location `json:"currentLocation,omitempty"`
}

// SettingsState holds device preferences kept across sessions.
type SettingsState struct {
	AppVersion         string              `json:"appVersion,omitempty"`
	LocationQueryPrefs *LocationQueryPrefs `json:"-"`
	ExploreLayout      string              `json:"exploreLayout,omitempty"`
}

// State is the whole application state.
type State struct {
	Posts          Slice[models.Post]     `json:"posts"`
	Comments       Slice[models.Comment]  `json:"comments"`
	CommentReplies Slice[models.Reply]    `json:"commentReplies"`
	Profiles       Slice[models.Profile]  `json:"profiles"`
	Products       Slice[models.Product]  `json:"products"`
	Merchants      Slice[models.Merchant] `json:"merchants"`
	Notifications  NotificationsState     `json:"notifications"`
	Auth           AuthState              `json:"auth"`
	Settings       SettingsState          `json:"settings"`
}

func initialNotifications() NotificationsState {
	return NotificationsState{Items: emptySlice(NotificationAdapter)}
}

func initialAuth() AuthState {
	return AuthState{Status: AuthStatusIdle}
}

// InitialState returns an empty state with every slice idle.
func InitialState() State {
	return State{
		Posts:          emptySlice(PostAdapter),
		Comments:       emptySlice(CommentAdapter),
		CommentReplies: emptySlice(ReplyAdapter),
		Profiles:       emptySlice(ProfileAdapter),
		Products:       emptySlice(ProductAdapter),
		Merchants:      emptySlice(MerchantAdapter),
		Notifications:  initialNotifications(),
		Auth:           initialAuth(),
	}
}
