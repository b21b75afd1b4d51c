package seed

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"discovrr/internal/models"
	"discovrr/internal/observability"
)

// Options configuration for the seeder
type Options struct {
	NumProfiles         int
	NumPosts            int
	NumMerchants        int
	ProductsPerMerchant int
	ShouldClean         bool
	Factory             FactoryOptions
}

// Summary counts what Seed created.
type Summary struct {
	Profiles      int
	Posts         int
	Comments      int
	Follows       int
	Likes         int
	Merchants     int
	Products      int
	Notifications int
}

var postKinds = []models.PostKind{
	models.PostKindText, models.PostKindText, models.PostKindText,
	models.PostKindGallery, models.PostKindGallery,
	models.PostKindVideo,
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	log := observability.GlobalLogger
	log.Info("starting database seeding", "profiles", opts.NumProfiles, "posts", opts.NumPosts)

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			log.Warn("could not clear existing data, continuing", "error", err)
		}
	}

	f := NewFactory(db, opts.Factory)

	profiles := make([]*models.Profile, 0, opts.NumProfiles)
	for i := 0; i < opts.NumProfiles; i++ {
		p, err := f.CreateProfile()
		if err != nil {
			return sum, fmt.Errorf("failed to create profiles: %w", err)
		}
		profiles = append(profiles, p)
	}
	sum.Profiles = len(profiles)
	if len(profiles) == 0 {
		return sum, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := profiles[f.rng.Intn(len(profiles))]
		posts = append(posts, f.BuildPost(author, postKinds[f.rng.Intn(len(postKinds))]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)

	for _, post := range posts {
		for i := 0; i < f.rng.Intn(4); i++ {
			c, err := f.CreateComment(post, profiles[f.rng.Intn(len(profiles))], nil)
			if err != nil {
				return sum, fmt.Errorf("failed to create comments: %w", err)
			}
			sum.Comments++
			if f.rng.Intn(3) == 0 {
				if _, err := f.CreateComment(post, profiles[f.rng.Intn(len(profiles))], c); err != nil {
					return sum, fmt.Errorf("failed to create replies: %w", err)
				}
				sum.Comments++
			}
		}
	}

	follows, err := seedFollows(f, profiles)
	if err != nil {
		return sum, err
	}
	sum.Follows = follows

	likes, err := seedPostLikes(f, profiles, posts)
	if err != nil {
		return sum, err
	}
	sum.Likes = likes

	for i := 0; i < opts.NumMerchants; i++ {
		m, err := f.CreateMerchant()
		if err != nil {
			return sum, fmt.Errorf("failed to create merchants: %w", err)
		}
		sum.Merchants++
		for j := 0; j < opts.ProductsPerMerchant; j++ {
			if _, err := f.CreateProduct(m); err != nil {
				return sum, fmt.Errorf("failed to create products: %w", err)
			}
			sum.Products++
		}
	}

	for _, p := range profiles {
		if _, err := f.CreateNotification(p, "Welcome to Discovrr", gofakeit.Sentence(8)); err != nil {
			return sum, fmt.Errorf("failed to create notifications: %w", err)
		}
		sum.Notifications++
	}

	log.Info("database seeding complete",
		"profiles", sum.Profiles, "posts", sum.Posts, "comments", sum.Comments,
		"follows", sum.Follows, "likes", sum.Likes, "merchants", sum.Merchants, "products", sum.Products)
	return sum, nil
}

// seedFollows has each profile follow up to three others.
func seedFollows(f *Factory, profiles []*models.Profile) (int, error) {
	n := 0
	for _, follower := range profiles {
		seen := map[string]bool{follower.ID: true}
		for i := 0; i < 3 && len(seen) < len(profiles); i++ {
			followee := profiles[f.rng.Intn(len(profiles))]
			if seen[followee.ID] {
				continue
			}
			seen[followee.ID] = true
			if err := f.create("follow", &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}); err != nil {
				return n, fmt.Errorf("failed to create follows: %w", err)
			}
			n++
		}
	}
	return n, nil
}

// seedPostLikes records likes and keeps each post's counter in step.
func seedPostLikes(f *Factory, profiles []*models.Profile, posts []*models.Post) (int, error) {
	n := 0
	for _, post := range posts {
		liked := 0
		for _, p := range profiles {
			if f.rng.Intn(4) != 0 {
				continue
			}
			like := &models.Like{ProfileID: p.ID, SubjectKind: models.SubjectPost, SubjectID: post.ID}
			if err := f.create("like", like); err != nil {
				return n, fmt.Errorf("failed to create likes: %w", err)
			}
			liked++
		}
		if liked > 0 && !f.opts.DryRun {
			if err := f.db.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("stat_total_likes", liked).Error; err != nil {
				return n, fmt.Errorf("failed to update like counts: %w", err)
			}
		}
		n += liked
	}
	return n, nil
}

// Clean deletes every seeded table's rows.
func Clean(db *gorm.DB) error {
	for _, model := range []any{
		&models.Like{}, &models.Follow{}, &models.Notification{}, &models.Comment{},
		&models.Post{}, &models.Product{}, &models.Merchant{}, &models.Session{},
		&models.Account{}, &models.Profile{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
