package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/observability"
	"discovrr/internal/store"
)

// snapshotVersion is bumped whenever the snapshot layout changes. Snapshots
// of another version are discarded on rehydrate.
const snapshotVersion = 1

// snapshot is the persisted subset of the state. Comments, replies,
// products and merchants are always loaded fresh. Fetch statuses and the
// location query prefs are never written.
type snapshot struct {
	Version       int                         `json:"version"`
	Posts         store.Slice[models.Post]    `json:"posts"`
	Profiles      store.Slice[models.Profile] `json:"profiles"`
	Auth          store.AuthState             `json:"auth"`
	Notifications store.NotificationsState    `json:"notifications"`
	Settings      store.SettingsState         `json:"settings"`
}

// Persistor writes state snapshots under one storage key.
type Persistor struct {
	storage  Storage
	key      string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *store.State
}

// New creates a Persistor. A positive debounce coalesces saves issued by
// Attach within that window.
func New(storage Storage, key string, debounce time.Duration) *Persistor {
	return &Persistor{storage: storage, key: key, debounce: debounce}
}

// Save writes the persisted subset of s.
func (p *Persistor) Save(ctx context.Context, s store.State) error {
	raw, err := json.Marshal(snapshot{
		Version:       snapshotVersion,
		Posts:         s.Posts,
		Profiles:      s.Profiles,
		Auth:          s.Auth,
		Notifications: s.Notifications,
		Settings:      s.Settings,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return p.storage.Set(ctx, p.key, raw)
}

// Rehydrate returns the initial state with the persisted slices restored.
// Every restored id starts idle. A missing, unreadable or outdated snapshot
// yields the initial state.
func (p *Persistor) Rehydrate(ctx context.Context) (store.State, error) {
	s := store.InitialState()
	raw, err := p.storage.Get(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, err
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "discarding unreadable state snapshot", "key", p.key, "error", err)
		return s, nil
	}
	if snap.Version != snapshotVersion {
		observability.GlobalLogger.InfoContext(ctx, "discarding outdated state snapshot",
			"key", p.key, "version", snap.Version, "want", snapshotVersion)
		return s, nil
	}

	snap.Posts.Collection = entity.Idle
	snap.Profiles.Collection = entity.Idle
	snap.Notifications.Items.Collection = entity.Idle
	snap.Auth.Status = store.AuthStatusIdle
	if snap.Auth.User != nil {
		snap.Auth.Status = store.AuthStatusFulfilled
	}

	s.Posts = snap.Posts
	s.Profiles = snap.Profiles
	s.Auth = snap.Auth
	s.Notifications = snap.Notifications
	s.Settings = snap.Settings
	return s, nil
}

// Purge removes the snapshot.
func (p *Persistor) Purge(ctx context.Context) error {
	return p.storage.Remove(ctx, p.key)
}

// Attach saves st's state after every dispatch until the returned function
// is called. The returned function flushes a pending debounced save.
func (p *Persistor) Attach(ctx context.Context, st *store.Store) func() {
	unsubscribe := st.Subscribe(func(s store.State, _ store.Action) {
		p.schedule(ctx, s)
	})
	return func() {
		unsubscribe()
		p.Flush(ctx)
	}
}

func (p *Persistor) schedule(ctx context.Context, s store.State) {
	if p.debounce <= 0 {
		p.save(ctx, s)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &s
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, func() { p.Flush(ctx) })
	}
}

// Flush writes a pending debounced save now.
func (p *Persistor) Flush(ctx context.Context) {
	p.mu.Lock()
	s := p.pending
	p.pending = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	if s != nil {
		p.save(ctx, *s)
	}
}

func (p *Persistor) save(ctx context.Context, s store.State) {
	if err := p.Save(ctx, s); err != nil {
		observability.GlobalLogger.ErrorContext(ctx, "failed to persist state", "key", p.key, "error", err)
	}
}
