package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"discovrr/internal/models"
	"discovrr/internal/notifications"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, page repository.Page, viewerID string) ([]models.Post, error) {
	args := m.Called(ctx, page, viewerID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByProfile(ctx context.Context, profileID string, page repository.Page, viewerID string) ([]models.Post, error) {
	args := m.Called(ctx, profileID, page, viewerID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string, page repository.Page, viewerID string) ([]models.Post, error) {
	args := m.Called(ctx, query, page, viewerID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, changes models.PostChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockPostRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	args := m.Called(ctx, profileID, id, didLike)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListForPost(ctx context.Context, postID string, viewerID string) ([]models.Comment, error) {
	args := m.Called(ctx, postID, viewerID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, commentID string, viewerID string) ([]models.Reply, error) {
	args := m.Called(ctx, commentID, viewerID)
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Update(ctx context.Context, id string, changes models.CommentChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockCommentRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	args := m.Called(ctx, profileID, id, didLike)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, page repository.Page) ([]models.Profile, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Search(ctx context.Context, query string, page repository.Page) ([]models.Profile, error) {
	args := m.Called(ctx, query, page)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, id string, changes models.ProfileChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockProfileRepository) SetFollowing(ctx context.Context, followerID, followeeID string, didFollow bool) error {
	args := m.Called(ctx, followerID, followeeID, didFollow)
	return args.Error(0)
}

func (m *MockProfileRepository) SetFCMRegistrationToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Product, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, page repository.Page, viewerID string) ([]models.Product, error) {
	args := m.Called(ctx, page, viewerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ListForMerchant(ctx context.Context, merchantID string, viewerID string) ([]models.Product, error) {
	args := m.Called(ctx, merchantID, viewerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	args := m.Called(ctx, profileID, id, didLike)
	return args.Error(0)
}

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Merchant, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) List(ctx context.Context, page repository.Page, viewerID string) ([]models.Merchant, error) {
	args := m.Called(ctx, page, viewerID)
	return args.Get(0).([]models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) SetLiked(ctx context.Context, profileID, id string, didLike bool) error {
	args := m.Called(ctx, profileID, id, didLike)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) ListForProfile(ctx context.Context, profileID string, page repository.Page) ([]models.Notification, error) {
	args := m.Called(ctx, profileID, page)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, profileID, id string) error {
	args := m.Called(ctx, profileID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteForProfile(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) SignInWithEmail(ctx context.Context, email, password string) (*repository.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Session), args.Error(1)
}

func (m *MockAuthProvider) SignInWithToken(ctx context.Context, token string) (*repository.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Session), args.Error(1)
}

func (m *MockAuthProvider) Register(ctx context.Context, params repository.RegisterParams) (*repository.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Session), args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// fixture bundles a store, its services and the mocks behind them.
type fixture struct {
	store         *store.Store
	svc           *Services
	posts         *MockPostRepository
	comments      *MockCommentRepository
	profiles      *MockProfileRepository
	products      *MockProductRepository
	merchants     *MockMerchantRepository
	notifications *MockNotificationRepository
	auth          *MockAuthProvider
}

func newFixture(t *testing.T, notifier *notifications.Notifier) *fixture {
	t.Helper()
	f := &fixture{
		store:         store.New(store.InitialState()),
		posts:         new(MockPostRepository),
		comments:      new(MockCommentRepository),
		profiles:      new(MockProfileRepository),
		products:      new(MockProductRepository),
		merchants:     new(MockMerchantRepository),
		notifications: new(MockNotificationRepository),
		auth:          new(MockAuthProvider),
	}
	f.svc = New(thunk.NewDispatcher(f.store), Repositories{
		Posts:         f.posts,
		Comments:      f.comments,
		Profiles:      f.profiles,
		Products:      f.products,
		Merchants:     f.merchants,
		Notifications: f.notifications,
		Auth:          f.auth,
	}, notifier)
	t.Cleanup(func() {
		f.posts.AssertExpectations(t)
		f.comments.AssertExpectations(t)
		f.profiles.AssertExpectations(t)
		f.products.AssertExpectations(t)
		f.merchants.AssertExpectations(t)
		f.notifications.AssertExpectations(t)
		f.auth.AssertExpectations(t)
	})
	return f
}

// signIn puts alice in the auth store without going through the provider.
func (f *fixture) signIn() models.User {
	user := models.User{ID: "acct-alice", Email: "alice@example.com", ProfileID: "alice"}
	f.store.Dispatch(store.AuthFulfilled{User: user, SessionID: "token-alice"})
	return user
}
