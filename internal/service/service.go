// Package service exposes the async actions the application issues against
// the store: each one runs a backend call through the thunk dispatcher so
// its lifecycle lands in state as pending, fulfilled or rejected.
package service

import (
	"context"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/notifications"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// fetchAllLimit bounds whole-collection fetches.
const fetchAllLimit = 100

// Repositories groups the backend collaborators.
type Repositories struct {
	Posts         repository.PostRepository
	Comments      repository.CommentRepository
	Profiles      repository.ProfileRepository
	Products      repository.ProductRepository
	Merchants     repository.MerchantRepository
	Notifications repository.NotificationRepository
	Auth          repository.AuthProvider
}

// Services is the full action surface of the application.
type Services struct {
	Posts         *PostService
	Comments      *CommentService
	Profiles      *ProfileService
	Products      *ProductService
	Merchants     *MerchantService
	Notifications *NotificationService
	Auth          *AuthService
	Session       *SessionService
}

// New wires every service to d. notifier may be nil.
func New(d *thunk.Dispatcher, repos Repositories, notifier *notifications.Notifier) *Services {
	profiles := NewProfileService(d, repos.Profiles)
	return &Services{
		Posts:         NewPostService(d, repos.Posts),
		Comments:      NewCommentService(d, repos.Comments),
		Profiles:      profiles,
		Products:      NewProductService(d, repos.Products),
		Merchants:     NewMerchantService(d, repos.Merchants),
		Notifications: NewNotificationService(d, repos.Notifications, notifier),
		Auth:          NewAuthService(d, repos.Auth, profiles),
		Session:       NewSessionService(d),
	}
}

// none is the result of remote calls that return nothing.
type none = struct{}

// viewerID is the profile id of the signed-in user, or "" when signed out.
func viewerID(d *thunk.Dispatcher) string {
	if u, ok := d.State().CurrentUser(); ok {
		return u.ProfileID
	}
	return ""
}

func requireViewer(d *thunk.Dispatcher) (string, error) {
	id := viewerID(d)
	if id == "" {
		return "", models.NewUnauthorizedError("Sign in required")
	}
	return id, nil
}

// fetchOne runs a by-id fetch gated on the id's current status, so at most
// one non-reload request per id is in flight.
func fetchOne[T store.Entity](
	ctx context.Context,
	d *thunk.Dispatcher,
	name, id string,
	reload bool,
	table func(store.State) entity.Table[T],
	call func(context.Context) (*T, error),
) (T, error) {
	return thunk.Run(ctx, d, thunk.Thunk[T]{
		Name: name,
		Condition: func(s store.State) bool {
			return entity.ShouldFetch(table(s).StatusOf(id).Status, reload)
		},
		Pending: store.FetchOnePending[T]{ID: id, Reload: reload},
		Call: func(ctx context.Context) (T, error) {
			var zero T
			e, err := call(ctx)
			if err != nil {
				return zero, err
			}
			if e == nil {
				return zero, models.NewNotFoundError(name, id)
			}
			return *e, nil
		},
		Fulfilled: func(e T) store.Action { return store.FetchOneFulfilled[T]{ID: id, Entity: e} },
		Rejected:  func(err error) store.Action { return store.FetchOneRejected[T]{ID: id, Err: err} },
	})
}

// fetchAll loads a whole collection. With reload the slice is replaced.
func fetchAll[T store.Entity](
	ctx context.Context,
	d *thunk.Dispatcher,
	name string,
	reload bool,
	call func(context.Context) ([]T, error),
) ([]T, error) {
	return thunk.Run(ctx, d, thunk.Thunk[[]T]{
		Name:      name,
		Pending:   store.FetchAllPending[T]{Reload: reload},
		Call:      call,
		Fulfilled: func(es []T) store.Action { return store.FetchAllFulfilled[T]{Entities: es, Reload: reload} },
		Rejected:  func(err error) store.Action { return store.FetchAllRejected[T]{Err: err} },
	})
}

// fetchMany loads a page or relationship-scoped subset and only upserts.
func fetchMany[T store.Entity](
	ctx context.Context,
	d *thunk.Dispatcher,
	name string,
	call func(context.Context) ([]T, error),
) ([]T, error) {
	return thunk.Run(ctx, d, thunk.Thunk[[]T]{
		Name:      name,
		Call:      call,
		Fulfilled: func(es []T) store.Action { return store.FetchManyFulfilled[T]{Entities: es} },
	})
}

// likeStatus runs an optimistic like. Requests for the state the entity is
// already in are skipped so a rollback always restores the prior counters.
func likeStatus[T store.Entity](
	ctx context.Context,
	d *thunk.Dispatcher,
	name, id string,
	didLike bool,
	stats func(store.State) (models.Statistics, bool),
	call func(ctx context.Context, profileID string) error,
) error {
	profileID, err := requireViewer(d)
	if err != nil {
		return err
	}
	_, err = thunk.Run(ctx, d, thunk.Thunk[none]{
		Name: name,
		Condition: func(s store.State) bool {
			st, ok := stats(s)
			return !ok || st.DidLike != didLike
		},
		Pending: store.LikePending[T]{ID: id, DidLike: didLike},
		Call: func(ctx context.Context) (none, error) {
			return none{}, call(ctx, profileID)
		},
		Fulfilled: func(none) store.Action { return store.LikeFulfilled[T]{ID: id, DidLike: didLike} },
		Rejected: func(err error) store.Action {
			return store.LikeRejected[T]{ID: id, DidLike: didLike, Err: err}
		},
	})
	return err
}

// statsOf adapts a slice lookup into the statistics accessor likeStatus needs.
func statsOf[T store.Entity](table func(store.State) entity.Table[T], get func(T) models.Statistics, id string) func(store.State) (models.Statistics, bool) {
	return func(s store.State) (models.Statistics, bool) {
		e, ok := table(s).SelectByID(id)
		if !ok {
			return models.Statistics{}, false
		}
		return get(e), true
	}
}
