package store

import (
	"discovrr/internal/models"
	"discovrr/internal/observability"
)

func reduceProfiles(s Slice[models.Profile], action Action) Slice[models.Profile] {
	s = reduceEntities(ProfileAdapter, nil, profilesLog, s, action)

	switch a := action.(type) {
	case FollowPending:
		s = applyFollow(s, a.Type(), a.FollowerID, a.FolloweeID, a.DidFollow)
	case FollowFulfilled:
	case FollowRejected:
		s = applyFollow(s, a.Type(), a.FollowerID, a.FolloweeID, !a.DidFollow)
		observability.OptimisticRollbacks.WithLabelValues("follow").Inc()
	case FCMTokenRegistered:
		t, ok := ProfileAdapter.UpdateOne(s.Table, a.ProfileID, func(p models.Profile) models.Profile {
			p.FCMRegistrationToken = a.Token
			return p
		})
		if !ok {
			profilesLog.LogSkipped(a.Type(), "profile not loaded", map[string]interface{}{"profile_id": a.ProfileID})
		}
		s.Table = t
	}
	return s
}

// applyFollow updates both sides of a follow in one step. A missing profile
// on either side makes it a logged no-op.
func applyFollow(s Slice[models.Profile], action, followerID, followeeID string, didFollow bool) Slice[models.Profile] {
	follower, okFollower := s.SelectByID(followerID)
	followee, okFollowee := s.SelectByID(followeeID)
	if !okFollower || !okFollowee || followerID == followeeID {
		profilesLog.LogSkipped(action, "follow requires two loaded profiles", map[string]interface{}{
			"follower_id": followerID,
			"followee_id": followeeID,
		})
		return s
	}
	follower, followee = ApplyFollowTransform(follower, followee, didFollow)
	s.Table, _ = ProfileAdapter.UpdateOne(s.Table, followerID, func(models.Profile) models.Profile { return follower })
	s.Table, _ = ProfileAdapter.UpdateOne(s.Table, followeeID, func(models.Profile) models.Profile { return followee })
	return s
}
