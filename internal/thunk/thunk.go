// Package thunk runs remote operations as three-phase store actions:
// pending on dispatch, then fulfilled or rejected on settlement.
package thunk

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"discovrr/internal/observability"
	"discovrr/internal/store"
)

// Thunk describes one async action. Only Name and Call are required.
type Thunk[R any] struct {
	// Name is the action prefix, e.g. "posts/fetchOne".
	Name string
	// Condition gates the run. It is evaluated under the store lock together
	// with the Pending dispatch.
	Condition func(store.State) bool
	// Pending is dispatched before the remote call.
	Pending store.Action
	// Call performs the remote operation.
	Call func(ctx context.Context) (R, error)
	// Fulfilled builds the action applied with a successful result.
	Fulfilled func(R) store.Action
	// Rejected builds the action applied with a failure.
	Rejected func(error) store.Action
}

// Dispatcher runs thunks against one store.
type Dispatcher struct {
	store *store.Store
}

// NewDispatcher creates a dispatcher writing to s.
func NewDispatcher(s *store.Store) *Dispatcher {
	return &Dispatcher{store: s}
}

// Store returns the store thunks are dispatched to.
func (d *Dispatcher) Store() *store.Store {
	return d.store
}

// State is a shortcut for Store().State().
func (d *Dispatcher) State() store.State {
	return d.store.State()
}

// Dispatch applies a plain action.
func (d *Dispatcher) Dispatch(a store.Action) {
	d.store.Dispatch(a)
}

// Run executes t. A skipped run returns a *ConditionError without touching
// the store. Failures are dispatched as data and also returned so callers
// can message the user. When ctx ends during the remote call the result is
// discarded and the rejected action carries ErrAborted.
func Run[R any](ctx context.Context, d *Dispatcher, t Thunk[R]) (R, error) {
	var zero R
	requestID := uuid.NewString()
	if observability.ExtractCorrelationID(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, requestID)
	}

	span, ctx := observability.StartThunkSpan(ctx, t.Name, requestID)
	defer span.End()

	if !d.begin(t.Condition, t.Pending) {
		observability.ThunkConditionSkips.WithLabelValues(t.Name).Inc()
		span.Skipped()
		return zero, &ConditionError{Action: t.Name}
	}
	span.Pending()
	observability.ThunkPhases.WithLabelValues(t.Name, "pending").Inc()
	observability.LogAsyncOperationStart(ctx, t.Name, map[string]interface{}{"request_id": requestID})

	start := time.Now()
	result, err := t.Call(ctx)
	observability.ThunkLatency.WithLabelValues(t.Name).Observe(time.Since(start).Seconds())

	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrAborted) {
		if err == nil {
			err = ctxErr
		}
		err = errors.Join(ErrAborted, err)
	}

	if err != nil {
		observability.ThunkPhases.WithLabelValues(t.Name, "rejected").Inc()
		observability.LogAsyncOperationError(ctx, t.Name, err, map[string]interface{}{"request_id": requestID})
		span.Settled(err)
		if t.Rejected != nil {
			if a := t.Rejected(err); a != nil {
				d.store.Dispatch(a)
			}
		}
		return zero, err
	}

	span.Settled(nil)
	observability.ThunkPhases.WithLabelValues(t.Name, "fulfilled").Inc()
	observability.LogAsyncOperationEnd(ctx, t.Name, map[string]interface{}{
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if t.Fulfilled != nil {
		if a := t.Fulfilled(result); a != nil {
			d.store.Dispatch(a)
		}
	}
	return result, nil
}

// begin checks cond and dispatches pending as one store write.
func (d *Dispatcher) begin(cond func(store.State) bool, pending store.Action) bool {
	if pending == nil {
		return cond == nil || cond(d.store.State())
	}
	return d.store.DispatchIf(cond, pending)
}
