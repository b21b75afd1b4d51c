// Package seed provides helpers to create test and demo data for the
// reference backend. These helpers are intended for development and testing
// only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"discovrr/internal/models"
	"discovrr/internal/observability"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "DemoPassword1!"

// FactoryOptions tunes generated data.
type FactoryOptions struct {
	// DryRun builds entities without writing them.
	DryRun bool
	// SkipBcrypt stores a cheap hash placeholder; sign-in will not work.
	SkipBcrypt bool
	// MaxDays spreads created_at over this many days back. Defaults to 90.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts FactoryOptions
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

func (f *Factory) create(kind string, v any) error {
	if f.opts.DryRun {
		observability.GlobalLogger.Debug("dry-run create", "kind", kind)
		return nil
	}
	return f.db.Create(v).Error
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateProfile constructs and persists a profile with a sign-in account.
func (f *Factory) CreateProfile(overrides ...func(*models.Profile)) (*models.Profile, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	profile := &models.Profile{
		ID:          uuid.NewString(),
		Kind:        models.ProfileKindPersonal,
		DisplayName: first + " " + last,
		Username:    strings.ToLower(fmt.Sprintf("%s%s%d", first, last, gofakeit.Number(100, 999))),
		Email:       strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, gofakeit.Number(1000, 9999))),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Biography:   gofakeit.Sentence(10),
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.create("profile", profile); err != nil {
		return nil, err
	}

	hash := "not-a-bcrypt-hash"
	if !f.opts.SkipBcrypt {
		raw, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(raw)
	}
	account := &models.Account{Email: profile.Email, PasswordHash: hash, ProfileID: profile.ID}
	if err := f.create("account", account); err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildPost constructs a post of the given kind without persisting it.
func (f *Factory) BuildPost(profile *models.Profile, kind models.PostKind, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Content:   models.PostContent{Kind: kind},
		CreatedAt: f.createdAt(),
	}
	switch kind {
	case models.PostKindGallery:
		post.Content.Caption = gofakeit.Sentence(8)
		for i := 0; i < 1+f.rng.Intn(4); i++ {
			post.Content.Sources = append(post.Content.Sources, models.MediaSource{
				URL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
				MIME:   "image/jpeg",
				Width:  800,
				Height: 800,
			})
		}
	case models.PostKindVideo:
		post.Content.Caption = gofakeit.Sentence(6)
		post.Content.Sources = []models.MediaSource{{
			URL:      fmt.Sprintf("https://videos.example.com/%s.mp4", gofakeit.UUID()),
			MIME:     "video/mp4",
			Duration: float64(5 + f.rng.Intn(55)),
		}}
	default:
		post.Content.Kind = models.PostKindText
		post.Content.Text = gofakeit.Paragraph(1, 3, 12, "\n")
	}
	if f.rng.Intn(3) == 0 {
		post.Location = &models.Location{
			Latitude:  gofakeit.Latitude(),
			Longitude: gofakeit.Longitude(),
			Text:      gofakeit.City(),
		}
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in one statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.create("posts", &posts)
}

// CreateComment adds a comment, or a reply when parent is set.
func (f *Factory) CreateComment(post *models.Post, author *models.Profile, parent *models.Comment) (*models.Comment, error) {
	c := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		ProfileID: author.ID,
		Message:   gofakeit.Sentence(f.rng.Intn(12) + 3),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.rng.Intn(720)) * time.Minute),
	}
	if parent != nil {
		c.ParentID = &parent.ID
		c.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rng.Intn(120)+1) * time.Minute)
	}
	return c, f.create("comment", c)
}

// CreateMerchant persists a merchant with a street address.
func (f *Factory) CreateMerchant(overrides ...func(*models.Merchant)) (*models.Merchant, error) {
	m := &models.Merchant{
		ID:          uuid.NewString(),
		ShortName:   gofakeit.Company(),
		Description: gofakeit.Sentence(12),
		Address: &models.Location{
			Latitude:  gofakeit.Latitude(),
			Longitude: gofakeit.Longitude(),
			Text:      gofakeit.Street() + ", " + gofakeit.City(),
		},
	}
	for _, override := range overrides {
		override(m)
	}
	return m, f.create("merchant", m)
}

// CreateProduct persists a product sold by m.
func (f *Factory) CreateProduct(m *models.Merchant, overrides ...func(*models.Product)) (*models.Product, error) {
	p := &models.Product{
		ID:          uuid.NewString(),
		MerchantID:  m.ID,
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		PriceCents:  int64(gofakeit.Price(1, 250) * 100),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/600", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(p)
	}
	return p, f.create("product", p)
}

// CreateNotification persists a notification for profile.
func (f *Factory) CreateNotification(profile *models.Profile, title, message string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Title:     title,
		Message:   message,
		CreatedAt: f.createdAt(),
	}
	return n, f.create("notification", n)
}
