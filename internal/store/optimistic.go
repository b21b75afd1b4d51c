package store

import (
	"slices"

	"discovrr/internal/models"
)

// ApplyLikeTransform sets DidLike and moves TotalLikes by one. It is a no-op
// when stats already reflect didLike, and TotalLikes never drops below zero.
// A failed like is reverted by calling it again with !didLike.
func ApplyLikeTransform(stats models.Statistics, didLike bool) models.Statistics {
	if stats.DidLike == didLike {
		return stats
	}
	stats.DidLike = didLike
	if didLike {
		stats.TotalLikes++
	} else if stats.TotalLikes > 0 {
		stats.TotalLikes--
	}
	return stats
}

// ApplyFollowTransform records follower following followee (or the reverse
// when didFollow is false) on both profiles. Lists are cloned, never mutated
// in place.
func ApplyFollowTransform(follower, followee models.Profile, didFollow bool) (models.Profile, models.Profile) {
	if didFollow {
		follower.Following = addID(follower.Following, followee.ID)
		followee.Followers = addID(followee.Followers, follower.ID)
	} else {
		follower.Following = removeID(follower.Following, followee.ID)
		followee.Followers = removeID(followee.Followers, follower.ID)
	}
	return follower, followee
}

func addID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

func removeID(ids []string, id string) []string {
	if !slices.Contains(ids, id) {
		return ids
	}
	return slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
}
