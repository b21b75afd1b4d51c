package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"discovrr/internal/cache"
	"discovrr/internal/models"
)

// ProfileRepository defines the interface for profile and follow operations.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, page Page) ([]models.Profile, error)
	Search(ctx context.Context, query string, page Page) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, id string, changes models.ProfileChanges) error
	SetFollowing(ctx context.Context, followerID, followeeID string, didFollow bool) error
	SetFCMRegistrationToken(ctx context.Context, id, token string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
			return err
		}
		profiles := []models.Profile{profile}
		if err := r.loadRelationships(ctx, profiles); err != nil {
			return err
		}
		profile = profiles[0]
		return nil
	})
	if err != nil {
		return nil, mapError(err, "profile", id)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, page Page) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := page.apply(r.db.WithContext(ctx)).Order("display_name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, r.loadRelationships(ctx, profiles)
}

func (r *profileRepository) Search(ctx context.Context, query string, page Page) ([]models.Profile, error) {
	var profiles []models.Profile
	like := containsPattern(query)
	err := page.apply(r.db.WithContext(ctx)).
		Where("LOWER(display_name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?)", like, like).
		Order("display_name ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, r.loadRelationships(ctx, profiles)
}

// loadRelationships fills Followers and Following from the follows table.
func (r *profileRepository) loadRelationships(ctx context.Context, profiles []models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, len(profiles))
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		index[p.ID] = i
		profiles[i].Followers = []string{}
		profiles[i].Following = []string{}
	}

	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id IN ? OR followee_id IN ?", ids, ids).
		Order("created_at ASC").
		Find(&follows).Error; err != nil {
		return err
	}
	for _, f := range follows {
		if i, ok := index[f.FollowerID]; ok {
			profiles[i].Following = append(profiles[i].Following, f.FolloweeID)
		}
		if i, ok := index[f.FolloweeID]; ok {
			profiles[i].Followers = append(profiles[i].Followers, f.FollowerID)
		}
	}
	return nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return mapError(r.db.WithContext(ctx).Create(profile).Error, "profile", profile.ID)
}

func (r *profileRepository) Update(ctx context.Context, id string, changes models.ProfileChanges) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("id = ?", id).First(&profile).Error; err != nil {
			return err
		}
		profile = profile.ApplyChanges(changes)
		return tx.Model(&profile).
			Select("display_name", "username", "avatar_url", "biography", "updated_at").
			Updates(&profile).Error
	})
	if err != nil {
		return mapError(err, "profile", id)
	}
	cache.InvalidateProfiles(ctx, id)
	return nil
}

func (r *profileRepository) SetFollowing(ctx context.Context, followerID, followeeID string, didFollow bool) error {
	if followerID == followeeID {
		return models.NewValidationError("a profile cannot follow itself")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("id IN ?", []string{followerID, followeeID}).Count(&count).Error; err != nil {
			return err
		}
		if count != 2 {
			return models.NewNotFoundError("profile", followeeID)
		}
		if didFollow {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
		}
		return tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&models.Follow{}).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateProfiles(ctx, followerID, followeeID)
	return nil
}

func (r *profileRepository) SetFCMRegistrationToken(ctx context.Context, id, token string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).
		Update("fcm_registration_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("profile", id)
	}
	cache.InvalidateProfiles(ctx, id)
	return nil
}
