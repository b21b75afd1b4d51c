package thunk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/store"
)

type fakeBackend struct {
	calls int
	post  models.Post
	err   error
	// block, when set, is closed by the test to release Call.
	block chan struct{}
}

func (b *fakeBackend) fetch(ctx context.Context) (models.Post, error) {
	b.calls++
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
		}
	}
	return b.post, b.err
}

func fetchPost(b *fakeBackend, id string, reload bool) Thunk[models.Post] {
	return Thunk[models.Post]{
		Name: "posts/fetchOne",
		Condition: func(s store.State) bool {
			return entity.ShouldFetch(s.Posts.StatusOf(id).Status, reload)
		},
		Pending:   store.FetchOnePending[models.Post]{ID: id, Reload: reload},
		Call:      b.fetch,
		Fulfilled: func(p models.Post) store.Action { return store.FetchOneFulfilled[models.Post]{ID: id, Entity: p} },
		Rejected:  func(err error) store.Action { return store.FetchOneRejected[models.Post]{ID: id, Err: err} },
	}
}

func TestRunFulfilled(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	b := &fakeBackend{post: models.Post{ID: "p1"}}

	got, err := Run(context.Background(), d, fetchPost(b, "p1", false))

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, entity.StatusFulfilled, d.State().Posts.StatusOf("p1").Status)
}

func TestRunRejectedStoresError(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	boom := errors.New("backend down")
	b := &fakeBackend{err: boom}

	_, err := Run(context.Background(), d, fetchPost(b, "p1", false))

	assert.ErrorIs(t, err, boom)
	status := d.State().Posts.StatusOf("p1")
	assert.Equal(t, entity.StatusRejected, status.Status)
	assert.ErrorIs(t, status.Err, boom)
	assert.False(t, d.State().Posts.Has("p1"))
}

func TestGateSkipsWhilePending(t *testing.T) {
	st := store.New(store.InitialState())
	st.Dispatch(store.FetchOnePending[models.Post]{ID: "p1"})
	d := NewDispatcher(st)
	b := &fakeBackend{post: models.Post{ID: "p1"}}

	_, err := Run(context.Background(), d, fetchPost(b, "p1", false))

	assert.ErrorIs(t, err, ErrConditionFailed)
	var condErr *ConditionError
	assert.ErrorAs(t, err, &condErr)
	assert.Equal(t, "posts/fetchOne", condErr.Action)
	assert.Zero(t, b.calls)
	assert.Equal(t, entity.StatusPending, d.State().Posts.StatusOf("p1").Status)
}

func TestGateSkipsWhenFulfilledUnlessReload(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	b := &fakeBackend{post: models.Post{ID: "p1"}}

	_, err := Run(context.Background(), d, fetchPost(b, "p1", false))
	require.NoError(t, err)
	_, err = Run(context.Background(), d, fetchPost(b, "p1", false))
	assert.ErrorIs(t, err, ErrConditionFailed)
	assert.Equal(t, 1, b.calls)

	_, err = Run(context.Background(), d, fetchPost(b, "p1", true))
	require.NoError(t, err)
	assert.Equal(t, 2, b.calls)
}

func TestGateAllowsRetryAfterRejection(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	b := &fakeBackend{err: errors.New("flaky")}

	_, err := Run(context.Background(), d, fetchPost(b, "p1", false))
	require.Error(t, err)

	b.err = nil
	b.post = models.Post{ID: "p1"}
	_, err = Run(context.Background(), d, fetchPost(b, "p1", false))
	require.NoError(t, err)
	assert.Equal(t, 2, b.calls)
}

func TestConcurrentRunsCallBackendOnce(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	b := &fakeBackend{post: models.Post{ID: "p1"}, block: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), d, fetchPost(b, "p1", false))
		done <- err
	}()
	require.Eventually(t, func() bool {
		return d.State().Posts.StatusOf("p1").Status == entity.StatusPending
	}, time.Second, 5*time.Millisecond)

	_, err := Run(context.Background(), d, fetchPost(b, "p1", false))
	assert.ErrorIs(t, err, ErrConditionFailed)

	close(b.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.calls)
}

func TestCancelledRunDiscardsResult(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	b := &fakeBackend{post: models.Post{ID: "p1"}, block: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, d, fetchPost(b, "p1", false))

	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.CodeAborted, Code(err))
	assert.False(t, d.State().Posts.Has("p1"))
	assert.Equal(t, entity.StatusRejected, d.State().Posts.StatusOf("p1").Status)
}

func TestRunWithoutPendingChecksCondition(t *testing.T) {
	d := NewDispatcher(store.New(store.InitialState()))
	called := false

	_, err := Run(context.Background(), d, Thunk[struct{}]{
		Name:      "auth/abortSignOut",
		Condition: func(s store.State) bool { return false },
		Call: func(context.Context) (struct{}, error) {
			called = true
			return struct{}{}, nil
		},
	})

	assert.ErrorIs(t, err, ErrConditionFailed)
	assert.False(t, called)
}
