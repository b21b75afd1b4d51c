package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishProfile(context.Background(), "alice", Payload{ID: "1"}))
	assert.NoError(t, n.Subscribe(context.Background(), "alice", func(Payload) {
		t.Fatal("nil notifier must not deliver")
	}))
}

func TestProfileChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:profile:alice", ProfileChannel("alice"))
}

func TestPayload_Notification(t *testing.T) {
	n := Payload{ID: "n1", Title: "Hi", Message: "there"}.Notification("alice")
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "alice", n.ProfileID)
	assert.False(t, n.Read)
}

func TestNotifier_SubscribeDeliversUntilCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Payload, 4)
	require.NoError(t, n.Subscribe(ctx, "alice", func(p Payload) { received <- p }))

	require.NoError(t, n.PublishProfile(context.Background(), "bob", Payload{ID: "other"}))
	mr.Publish(ProfileChannel("alice"), "not json")
	require.NoError(t, n.PublishProfile(context.Background(), "alice", Payload{ID: "n1", Title: "New follower"}))

	select {
	case p := <-received:
		assert.Equal(t, "n1", p.ID)
		assert.Equal(t, "New follower", p.Title)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	_ = n.PublishProfile(context.Background(), "alice", Payload{ID: "late"})
	assert.Never(t, func() bool {
		select {
		case p := <-received:
			return p.ID == "late"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}
