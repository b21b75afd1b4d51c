package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

var alice = models.User{ID: "acct-alice", Email: "alice@example.com", ProfileID: "alice"}

func TestAuthService_SignInLoadsProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.auth.On("SignInWithEmail", mock.Anything, "alice@example.com", "pw").
		Return(&repository.Session{User: alice, Token: "tok"}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, "alice").
		Return(&models.Profile{ID: "alice", DisplayName: "Alice"}, nil).Once()

	user, err := f.svc.Auth.SignInWithEmail(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, alice, user)

	st := f.store.State()
	assert.Equal(t, store.AuthStatusFulfilled, st.Auth.Status)
	assert.Equal(t, "tok", st.Auth.SessionID)
	profile, ok := store.CurrentProfile(st)
	require.True(t, ok)
	assert.Equal(t, "Alice", profile.DisplayName)
}

func TestAuthService_SignInRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.auth.On("SignInWithToken", mock.Anything, "stale").
		Return(nil, models.NewUnauthorizedError("Session revoked")).Once()

	_, err := f.svc.Auth.SignInWithToken(context.Background(), "stale")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	st := f.store.State()
	assert.Equal(t, store.AuthStatusRejected, st.Auth.Status)
	assert.Nil(t, st.Auth.User)
	assert.Error(t, st.Auth.Err)
}

func TestAuthService_ProfileFailureAbortsSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	params := repository.RegisterParams{Email: "alice@example.com", Password: "pw", DisplayName: "Alice"}
	f.auth.On("Register", mock.Anything, params).Return(&repository.Session{User: alice, Token: "tok"}, nil).Once()
	profileErr := errors.New("profile service down")
	f.profiles.On("GetByID", mock.Anything, "alice").Return(nil, profileErr).Once()
	f.auth.On("SignOut", mock.Anything, "tok").Return(nil).Once()

	_, err := f.svc.Auth.RegisterNewAccount(ctx, params)
	assert.ErrorIs(t, err, profileErr)
	f.svc.Auth.Wait()

	st := f.store.State()
	assert.Equal(t, store.AuthStatusRejected, st.Auth.Status)
	assert.True(t, st.Auth.DidAbortSignOut)
	assert.Nil(t, st.Auth.User)
	assert.Empty(t, st.Auth.SessionID)

	err = f.svc.Auth.AbortSignOut(ctx, errors.New("again"))
	assert.ErrorIs(t, err, thunk.ErrConditionFailed)
}

func TestAuthService_SignInClearsAbortFlag(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signIn()
	f.auth.On("SignOut", mock.Anything, "token-alice").Return(repository.ErrNoCurrentUser).Once()
	require.Error(t, f.svc.Auth.AbortSignOut(ctx, errors.New("expired")))
	f.svc.Auth.Wait()
	require.True(t, f.store.State().Auth.DidAbortSignOut)

	f.auth.On("SignInWithEmail", mock.Anything, "alice@example.com", "pw").
		Return(&repository.Session{User: alice, Token: "tok2"}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, "alice").Return(&models.Profile{ID: "alice"}, nil).Once()
	_, err := f.svc.Auth.SignInWithEmail(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, f.store.State().Auth.DidAbortSignOut)
}

func TestAuthService_SignOutToleratesNoCurrentUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signIn()
	f.store.Dispatch(store.FCMTokenRegistered{ProfileID: "alice", Token: "device"})
	f.store.Dispatch(store.CreateFulfilled[models.Post]{Entity: models.Post{ID: "p1"}})
	f.auth.On("SignOut", mock.Anything, "token-alice").Return(repository.ErrNoCurrentUser).Once()

	require.NoError(t, f.svc.Auth.SignOut(ctx, false))

	st := f.store.State()
	assert.Equal(t, store.AuthStatusIdle, st.Auth.Status)
	assert.Nil(t, st.Auth.User)
	assert.Zero(t, st.Posts.Len())
	assert.True(t, st.Notifications.DidRegisterFCMToken)
}

func TestAuthService_SignOutFailureKeepsUser(t *testing.T) {
	f := newFixture(t, nil)
	f.signIn()
	f.store.Dispatch(store.CreateFulfilled[models.Post]{Entity: models.Post{ID: "p1"}})
	f.auth.On("SignOut", mock.Anything, "token-alice").Return(errors.New("network")).Once()

	require.Error(t, f.svc.Auth.SignOut(context.Background(), true))

	st := f.store.State()
	assert.Equal(t, store.AuthStatusRejected, st.Auth.Status)
	require.NotNil(t, st.Auth.User)
	assert.Equal(t, "alice", st.Auth.User.ProfileID)
	assert.Equal(t, 1, st.Posts.Len())
}
