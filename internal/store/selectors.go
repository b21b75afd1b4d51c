package store

import (
	"slices"

	"discovrr/internal/models"
)

// PostsByProfile returns the posts authored by profileID, newest first.
func PostsByProfile(s State, profileID string) []models.Post {
	return filter(s.Posts.SelectAll(), func(p models.Post) bool { return p.ProfileID == profileID })
}

// CommentsForPost returns the top-level comments of postID.
func CommentsForPost(s State, postID string) []models.Comment {
	return filter(s.Comments.SelectAll(), func(c models.Comment) bool {
		return c.PostID == postID && !c.IsReply()
	})
}

// RepliesForComment returns the replies to commentID.
func RepliesForComment(s State, commentID string) []models.Reply {
	return filter(s.CommentReplies.SelectAll(), func(r models.Reply) bool {
		return r.ParentID != nil && *r.ParentID == commentID
	})
}

// ProductsForMerchant returns the products sold by merchantID.
func ProductsForMerchant(s State, merchantID string) []models.Product {
	return filter(s.Products.SelectAll(), func(p models.Product) bool { return p.MerchantID == merchantID })
}

// IsFollowing reports whether followerID follows followeeID according to the
// follower's profile.
func IsFollowing(s State, followerID, followeeID string) bool {
	p, ok := s.Profiles.SelectByID(followerID)
	if !ok {
		return false
	}
	return slices.Contains(p.Following, followeeID)
}

// CurrentProfile returns the profile of the signed-in user when it is loaded.
func CurrentProfile(s State) (models.Profile, bool) {
	user, ok := s.CurrentUser()
	if !ok {
		return models.Profile{}, false
	}
	return s.Profiles.SelectByID(user.ProfileID)
}

// UnreadNotificationCount counts notifications not yet marked read.
func UnreadNotificationCount(s State) int {
	n := 0
	for _, item := range s.Notifications.Items.SelectAll() {
		if !item.Read {
			n++
		}
	}
	return n
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
