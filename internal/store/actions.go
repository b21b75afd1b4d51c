package store

import (
	"reflect"
	"strings"

	"discovrr/internal/models"
)

// Action is a command reduced by the store. The set of actions is closed:
// only types declared in this package implement it.
type Action interface {
	// Type names the action for logs and metrics, e.g. "posts/fetchOne/pending".
	Type() string
	isAction()
}

// Entity is the set of record types held in entity slices.
type Entity interface {
	models.Post | models.Comment | models.Reply | models.Profile |
		models.Product | models.Merchant | models.Notification
}

func sliceName[T Entity]() string {
	var zero T
	switch any(zero).(type) {
	case models.Reply:
		return "commentReplies"
	default:
		return strings.ToLower(reflect.TypeOf(zero).Name()) + "s"
	}
}

// FetchOnePending is dispatched when a fetch-by-id request starts.
type FetchOnePending[T Entity] struct {
	ID     string
	Reload bool
}

// FetchOneFulfilled carries the entity returned by a fetch-by-id request.
type FetchOneFulfilled[T Entity] struct {
	ID     string
	Entity T
}

// FetchOneRejected records the failure of a fetch-by-id request.
type FetchOneRejected[T Entity] struct {
	ID  string
	Err error
}

// FetchAllPending is dispatched when a whole-collection fetch starts.
type FetchAllPending[T Entity] struct {
	Reload bool
}

// FetchAllFulfilled carries a whole collection. With Reload the table is
// replaced so entities deleted upstream disappear; otherwise it is upserted.
type FetchAllFulfilled[T Entity] struct {
	Entities []T
	Reload   bool
}

// FetchAllRejected records the failure of a whole-collection fetch.
type FetchAllRejected[T Entity] struct {
	Err error
}

// FetchManyFulfilled carries a page or relationship-scoped subset. It only
// ever upserts, never removes.
type FetchManyFulfilled[T Entity] struct {
	Entities []T
}

// CreateFulfilled carries an entity created remotely.
type CreateFulfilled[T Entity] struct {
	Entity T
}

// UpdateFulfilled applies confirmed edits to an entity.
type UpdateFulfilled[T Entity, C any] struct {
	ID      string
	Changes C
}

// DeleteFulfilled removes a remotely deleted entity and its status.
type DeleteFulfilled[T Entity] struct {
	ID string
}

// LikePending optimistically applies a like or unlike.
type LikePending[T Entity] struct {
	ID      string
	DidLike bool
}

// LikeFulfilled confirms a like; the optimistic state is already correct.
type LikeFulfilled[T Entity] struct {
	ID      string
	DidLike bool
}

// LikeRejected reverts an optimistic like by applying the inverse.
type LikeRejected[T Entity] struct {
	ID      string
	DidLike bool
	Err     error
}

func (FetchOnePending[T]) Type() string    { return sliceName[T]() + "/fetchOne/pending" }
func (FetchOneFulfilled[T]) Type() string  { return sliceName[T]() + "/fetchOne/fulfilled" }
func (FetchOneRejected[T]) Type() string   { return sliceName[T]() + "/fetchOne/rejected" }
func (FetchAllPending[T]) Type() string    { return sliceName[T]() + "/fetchAll/pending" }
func (FetchAllFulfilled[T]) Type() string  { return sliceName[T]() + "/fetchAll/fulfilled" }
func (FetchAllRejected[T]) Type() string   { return sliceName[T]() + "/fetchAll/rejected" }
func (FetchManyFulfilled[T]) Type() string { return sliceName[T]() + "/fetchMany/fulfilled" }
func (CreateFulfilled[T]) Type() string    { return sliceName[T]() + "/create/fulfilled" }
func (UpdateFulfilled[T, C]) Type() string { return sliceName[T]() + "/update/fulfilled" }
func (DeleteFulfilled[T]) Type() string    { return sliceName[T]() + "/delete/fulfilled" }
func (LikePending[T]) Type() string        { return sliceName[T]() + "/updateLikeStatus/pending" }
func (LikeFulfilled[T]) Type() string      { return sliceName[T]() + "/updateLikeStatus/fulfilled" }
func (LikeRejected[T]) Type() string       { return sliceName[T]() + "/updateLikeStatus/rejected" }

func (FetchOnePending[T]) isAction()    {}
func (FetchOneFulfilled[T]) isAction()  {}
func (FetchOneRejected[T]) isAction()   {}
func (FetchAllPending[T]) isAction()    {}
func (FetchAllFulfilled[T]) isAction()  {}
func (FetchAllRejected[T]) isAction()   {}
func (FetchManyFulfilled[T]) isAction() {}
func (CreateFulfilled[T]) isAction()    {}
func (UpdateFulfilled[T, C]) isAction() {}
func (DeleteFulfilled[T]) isAction()    {}
func (LikePending[T]) isAction()        {}
func (LikeFulfilled[T]) isAction()      {}
func (LikeRejected[T]) isAction()       {}

// FollowPending optimistically follows or unfollows FolloweeID from FollowerID.
type FollowPending struct {
	FollowerID string
	FolloweeID string
	DidFollow  bool
}

// FollowFulfilled confirms a follow change.
type FollowFulfilled struct {
	FollowerID string
	FolloweeID string
	DidFollow  bool
}

// FollowRejected reverts an optimistic follow change.
type FollowRejected struct {
	FollowerID string
	FolloweeID string
	DidFollow  bool
	Err        error
}

// FCMTokenRegistered marks the device push token as stored on the profile.
type FCMTokenRegistered struct {
	ProfileID string
	Token     string
}

// DidReceiveNotification adds a push notification delivered to the device.
type DidReceiveNotification struct {
	Notification models.Notification
}

// MarkNotificationRead flags one notification as read.
type MarkNotificationRead struct {
	ID string
}

// ClearNotifications empties the notification list, keeping the token flag.
type ClearNotifications struct{}

func (FollowPending) Type() string          { return "profiles/updateFollowStatus/pending" }
func (FollowFulfilled) Type() string        { return "profiles/updateFollowStatus/fulfilled" }
func (FollowRejected) Type() string         { return "profiles/updateFollowStatus/rejected" }
func (FCMTokenRegistered) Type() string     { return "notifications/fcmTokenRegistered" }
func (DidReceiveNotification) Type() string { return "notifications/didReceiveNotification" }
func (MarkNotificationRead) Type() string   { return "notifications/markRead" }
func (ClearNotifications) Type() string     { return "notifications/clear" }

func (FollowPending) isAction()          {}
func (FollowFulfilled) isAction()        {}
func (FollowRejected) isAction()         {}
func (FCMTokenRegistered) isAction()     {}
func (DidReceiveNotification) isAction() {}
func (MarkNotificationRead) isAction()   {}
func (ClearNotifications) isAction()     {}

// SignInPending starts a sign-in.
type SignInPending struct{}

// RegisterPending starts an account registration.
type RegisterPending struct{}

// AuthFulfilled stores the signed-in user after sign-in or registration.
type AuthFulfilled struct {
	User      models.User
	SessionID string
}

// AuthRejected records a failed sign-in or registration.
type AuthRejected struct {
	Err error
}

// SignOutPending starts a sign-out.
type SignOutPending struct{}

// SignOutFulfilled resets the auth state after sign-out.
type SignOutFulfilled struct{}

// SignOutRejected records a failed sign-out; the user is kept.
type SignOutRejected struct {
	Err error
}

// AbortSignOutRejected force-resets auth after an unrecoverable session error.
type AbortSignOutRejected struct {
	Err error
}

func (SignInPending) Type() string        { return "auth/signIn/pending" }
func (RegisterPending) Type() string      { return "auth/register/pending" }
func (AuthFulfilled) Type() string        { return "auth/signIn/fulfilled" }
func (AuthRejected) Type() string         { return "auth/signIn/rejected" }
func (SignOutPending) Type() string       { return "auth/signOut/pending" }
func (SignOutFulfilled) Type() string     { return "auth/signOut/fulfilled" }
func (SignOutRejected) Type() string      { return "auth/signOut/rejected" }
func (AbortSignOutRejected) Type() string { return "auth/abortSignOut/rejected" }

func (SignInPending) isAction()        {}
func (RegisterPending) isAction()      {}
func (AuthFulfilled) isAction()        {}
func (AuthRejected) isAction()         {}
func (SignOutPending) isAction()       {}
func (SignOutFulfilled) isAction()     {}
func (SignOutRejected) isAction()      {}
func (AbortSignOutRejected) isAction() {}

// SetAppVersion records the app version the persisted state belongs to.
type SetAppVersion struct {
	Version string
}

// SetLocationQueryPrefs stores the search radius preferences.
type SetLocationQueryPrefs struct {
	Prefs *LocationQueryPrefs
}

// SetExploreLayout stores the preferred feed layout.
type SetExploreLayout struct {
	Layout string
}

// ResetAllData purges every entity store. Auth and settings are untouched.
type ResetAllData struct {
	ShouldResetFCMRegistrationToken bool
}

func (SetAppVersion) Type() string         { return "settings/setAppVersion" }
func (SetLocationQueryPrefs) Type() string { return "settings/setLocationQueryPrefs" }
func (SetExploreLayout) Type() string      { return "settings/setExploreLayout" }
func (ResetAllData) Type() string          { return "app/resetAllData" }

func (SetAppVersion) isAction()         {}
func (SetLocationQueryPrefs) isAction() {}
func (SetExploreLayout) isAction()      {}
func (ResetAllData) isAction()          {}
