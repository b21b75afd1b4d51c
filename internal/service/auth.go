package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"discovrr/internal/models"
	"discovrr/internal/observability"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// remoteSignOutTimeout bounds the fire-and-forget sign-out of AbortSignOut.
const remoteSignOutTimeout = 10 * time.Second

// AuthService drives the auth state machine.
type AuthService struct {
	d        *thunk.Dispatcher
	provider repository.AuthProvider
	profiles *ProfileService

	background sync.WaitGroup
}

// NewAuthService creates a new auth service. profiles loads the signed-in
// user's profile after every sign-in.
func NewAuthService(d *thunk.Dispatcher, provider repository.AuthProvider, profiles *ProfileService) *AuthService {
	return &AuthService{d: d, provider: provider, profiles: profiles}
}

func (s *AuthService) signIn(ctx context.Context, name string, pending store.Action, call func(context.Context) (*repository.Session, error)) (models.User, error) {
	session, err := thunk.Run(ctx, s.d, thunk.Thunk[*repository.Session]{
		Name:    name,
		Pending: pending,
		Call:    call,
		Fulfilled: func(ses *repository.Session) store.Action {
			return store.AuthFulfilled{User: ses.User, SessionID: ses.Token}
		},
		Rejected: func(err error) store.Action { return store.AuthRejected{Err: err} },
	})
	if err != nil {
		return models.User{}, err
	}

	// A user without a loadable profile is not allowed to stay signed in.
	if _, err := s.profiles.FetchProfileByID(ctx, session.User.ProfileID, true); err != nil {
		_ = s.AbortSignOut(ctx, err)
		return models.User{}, err
	}
	return session.User, nil
}

// SignInWithEmail signs in with account credentials and loads the user's profile.
func (s *AuthService) SignInWithEmail(ctx context.Context, email, password string) (models.User, error) {
	return s.signIn(ctx, "auth/signInWithEmail", store.SignInPending{}, func(ctx context.Context) (*repository.Session, error) {
		return s.provider.SignInWithEmail(ctx, email, password)
	})
}

// SignInWithToken resumes a persisted session.
func (s *AuthService) SignInWithToken(ctx context.Context, token string) (models.User, error) {
	return s.signIn(ctx, "auth/signInWithToken", store.SignInPending{}, func(ctx context.Context) (*repository.Session, error) {
		return s.provider.SignInWithToken(ctx, token)
	})
}

// RegisterNewAccount creates an account with its profile and signs it in.
func (s *AuthService) RegisterNewAccount(ctx context.Context, params repository.RegisterParams) (models.User, error) {
	return s.signIn(ctx, "auth/registerNewAccount", store.RegisterPending{}, func(ctx context.Context) (*repository.Session, error) {
		return s.provider.Register(ctx, params)
	})
}

// SignOut ends the session and purges cached data. A backend reporting no
// current user counts as success.
func (s *AuthService) SignOut(ctx context.Context, resetPushToken bool) error {
	token := s.d.State().Auth.SessionID
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name:    "auth/signOut",
		Pending: store.SignOutPending{},
		Call: func(ctx context.Context) (none, error) {
			err := s.provider.SignOut(ctx, token)
			if errors.Is(err, repository.ErrNoCurrentUser) {
				return none{}, nil
			}
			return none{}, err
		},
		Fulfilled: func(none) store.Action { return store.SignOutFulfilled{} },
		Rejected:  func(err error) store.Action { return store.SignOutRejected{Err: err} },
	})
	if err != nil {
		return err
	}
	s.d.Dispatch(store.ResetAllData{ShouldResetFCMRegistrationToken: resetPushToken})
	return nil
}

// AbortSignOut force-signs the user out after cause made the session
// unusable. It runs at most once until the next successful sign-in, always
// rejects with cause and leaves the remote sign-out running in the
// background.
func (s *AuthService) AbortSignOut(ctx context.Context, cause error) error {
	token := s.d.State().Auth.SessionID
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "auth/abortSignOut",
		Condition: func(st store.State) bool {
			return !st.Auth.DidAbortSignOut
		},
		Call: func(ctx context.Context) (none, error) {
			s.signOutInBackground(context.WithoutCancel(ctx), token)
			return none{}, cause
		},
		Rejected: func(error) store.Action { return store.AbortSignOutRejected{Err: cause} },
	})
	return err
}

func (s *AuthService) signOutInBackground(ctx context.Context, token string) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(ctx, remoteSignOutTimeout)
		defer cancel()
		if err := s.provider.SignOut(ctx, token); err != nil && !errors.Is(err, repository.ErrNoCurrentUser) {
			observability.GlobalLogger.WarnContext(ctx, "remote sign-out failed", "error", err)
		}
	}()
}

// Wait blocks until background sign-outs have finished.
func (s *AuthService) Wait() {
	s.background.Wait()
}
