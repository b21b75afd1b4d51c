package service

import (
	"context"
	"strings"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
	"discovrr/internal/validation"
)

// ProfileService issues profile, follow and push token actions.
type ProfileService struct {
	d    *thunk.Dispatcher
	repo repository.ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(d *thunk.Dispatcher, repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{d: d, repo: repo}
}

func profilesTable(s store.State) entity.Table[models.Profile] { return s.Profiles.Table }

func (s *ProfileService) FetchProfileByID(ctx context.Context, id string, reload bool) (models.Profile, error) {
	return fetchOne(ctx, s.d, "profiles/fetchOne", id, reload, profilesTable, func(ctx context.Context) (*models.Profile, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func (s *ProfileService) FetchAllProfiles(ctx context.Context, reload bool) ([]models.Profile, error) {
	return fetchAll(ctx, s.d, "profiles/fetchAll", reload, func(ctx context.Context) ([]models.Profile, error) {
		return s.repo.List(ctx, repository.Page{Limit: fetchAllLimit})
	})
}

func (s *ProfileService) SearchProfiles(ctx context.Context, query string, page repository.Page) ([]models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return fetchMany(ctx, s.d, "profiles/search", func(ctx context.Context) ([]models.Profile, error) {
		return s.repo.Search(ctx, query, page)
	})
}

// UpdateProfile edits the signed-in user's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, changes models.ProfileChanges) error {
	id, err := requireViewer(s.d)
	if err != nil {
		return err
	}
	if changes.Username != nil {
		if err := validation.ValidateUsername(*changes.Username); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if changes.DisplayName != nil && strings.TrimSpace(*changes.DisplayName) == "" {
		return models.NewValidationError("Display name is required")
	}
	_, err = thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "profiles/update",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.Update(ctx, id, changes)
		},
		Fulfilled: func(none) store.Action {
			return store.UpdateFulfilled[models.Profile, models.ProfileChanges]{ID: id, Changes: changes}
		},
	})
	return err
}

// UpdateProfileFollowStatus follows or unfollows followeeID as the signed-in
// user. Both profiles' relationship lists change on dispatch and revert if
// the backend refuses.
func (s *ProfileService) UpdateProfileFollowStatus(ctx context.Context, followeeID string, didFollow bool) error {
	followerID, err := requireViewer(s.d)
	if err != nil {
		return err
	}
	if followerID == followeeID {
		return models.NewValidationError("a profile cannot follow itself")
	}
	_, err = thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "profiles/updateFollowStatus",
		Condition: func(st store.State) bool {
			_, okFollower := st.Profiles.SelectByID(followerID)
			_, okFollowee := st.Profiles.SelectByID(followeeID)
			return !okFollower || !okFollowee || store.IsFollowing(st, followerID, followeeID) != didFollow
		},
		Pending: store.FollowPending{FollowerID: followerID, FolloweeID: followeeID, DidFollow: didFollow},
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.SetFollowing(ctx, followerID, followeeID, didFollow)
		},
		Fulfilled: func(none) store.Action {
			return store.FollowFulfilled{FollowerID: followerID, FolloweeID: followeeID, DidFollow: didFollow}
		},
		Rejected: func(err error) store.Action {
			return store.FollowRejected{FollowerID: followerID, FolloweeID: followeeID, DidFollow: didFollow, Err: err}
		},
	})
	return err
}

// SetFCMRegistrationTokenForProfile stores the device push token on profileID.
func (s *ProfileService) SetFCMRegistrationTokenForProfile(ctx context.Context, profileID, token string) error {
	if strings.TrimSpace(token) == "" {
		return models.NewValidationError("Registration token is required")
	}
	_, err := thunk.Run(ctx, s.d, thunk.Thunk[none]{
		Name: "profiles/setFCMRegistrationToken",
		Call: func(ctx context.Context) (none, error) {
			return none{}, s.repo.SetFCMRegistrationToken(ctx, profileID, token)
		},
		Fulfilled: func(none) store.Action {
			return store.FCMTokenRegistered{ProfileID: profileID, Token: token}
		},
	})
	return err
}
