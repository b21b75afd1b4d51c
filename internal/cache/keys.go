package cache

import (
	"context"
	"time"
)

const (
	ProfileKeyPrefix = "profile:"
	ProfileTTL       = 5 * time.Minute
)

func ProfileKey(profileID string) string {
	return ProfileKeyPrefix + profileID
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateProfiles(ctx context.Context, profileIDs ...string) {
	keys := make([]string, 0, len(profileIDs))
	for _, id := range profileIDs {
		keys = append(keys, ProfileKey(id))
	}
	Invalidate(ctx, keys...)
}
