// Package notifications delivers push notifications to profiles over Redis
// pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"discovrr/internal/models"
	"discovrr/internal/observability"
)

// Payload is the push message shape delivered to a device.
type Payload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notification converts the payload into the record held by the store.
func (p Payload) Notification(profileID string) models.Notification {
	return models.Notification{
		ID:        p.ID,
		ProfileID: profileID,
		Title:     p.Title,
		Message:   p.Message,
	}
}

// ProfileChannel returns the channel notifications for profileID are published on.
func ProfileChannel(profileID string) string {
	return fmt.Sprintf("notifications:profile:%s", profileID)
}

// Notifier publishes and receives notification payloads. A Notifier without
// a Redis client accepts every call and delivers nothing.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishProfile sends payload to a profile's channel.
func (n *Notifier) PublishProfile(ctx context.Context, profileID string, payload Payload) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ProfileChannel(profileID), raw).Err()
}

// Subscribe listens on profileID's channel until ctx ends, calling onMessage
// for each decodable payload. It returns once the subscription is active.
func (n *Notifier) Subscribe(ctx context.Context, profileID string, onMessage func(Payload)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ProfileChannel(profileID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", profileID, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var payload Payload
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					observability.GlobalLogger.Warn("dropping malformed notification",
						"channel", msg.Channel, "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(payload)
				}()
			}
		}
	}()
	return nil
}
