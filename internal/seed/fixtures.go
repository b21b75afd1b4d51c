package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"discovrr/internal/models"
)

// Fixtures is a hand-written data set loaded from YAML.
type Fixtures struct {
	Profiles  []ProfileFixture  `yaml:"profiles"`
	Merchants []MerchantFixture `yaml:"merchants"`
}

type ProfileFixture struct {
	ID          string             `yaml:"id"`
	DisplayName string             `yaml:"displayName"`
	Username    string             `yaml:"username"`
	Email       string             `yaml:"email"`
	Kind        models.ProfileKind `yaml:"kind"`
	Follows     []string           `yaml:"follows"`
	Posts       []string           `yaml:"posts"`
}

type MerchantFixture struct {
	ID        string           `yaml:"id"`
	ShortName string           `yaml:"shortName"`
	Products  []ProductFixture `yaml:"products"`
}

type ProductFixture struct {
	Name       string `yaml:"name"`
	PriceCents int64  `yaml:"priceCents"`
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes fixtures and checks that follows reference known profiles.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	ids := make(map[string]bool, len(fx.Profiles))
	for _, p := range fx.Profiles {
		if p.ID == "" || p.DisplayName == "" {
			return nil, fmt.Errorf("profile fixture needs id and displayName")
		}
		ids[p.ID] = true
	}
	for _, p := range fx.Profiles {
		for _, followee := range p.Follows {
			if !ids[followee] || followee == p.ID {
				return nil, fmt.Errorf("profile %s follows unknown or self profile %q", p.ID, followee)
			}
		}
	}
	return &fx, nil
}

// Apply writes the fixtures with f.
func (fx *Fixtures) Apply(f *Factory) error {
	profiles := make(map[string]*models.Profile, len(fx.Profiles))
	for _, pf := range fx.Profiles {
		pf := pf
		p, err := f.CreateProfile(func(p *models.Profile) {
			p.ID = pf.ID
			p.DisplayName = pf.DisplayName
			if pf.Username != "" {
				p.Username = pf.Username
			}
			if pf.Email != "" {
				p.Email = pf.Email
			}
			if pf.Kind != "" {
				p.Kind = pf.Kind
			}
		})
		if err != nil {
			return fmt.Errorf("profile %s: %w", pf.ID, err)
		}
		profiles[pf.ID] = p
	}

	for _, pf := range fx.Profiles {
		var posts []*models.Post
		for _, text := range pf.Posts {
			text := text
			posts = append(posts, f.BuildPost(profiles[pf.ID], models.PostKindText, func(p *models.Post) {
				p.Content.Text = text
				p.Location = nil
			}))
		}
		if err := f.CreatePostsBatch(posts); err != nil {
			return fmt.Errorf("posts of %s: %w", pf.ID, err)
		}
		for _, followee := range pf.Follows {
			if err := f.create("follow", &models.Follow{FollowerID: pf.ID, FolloweeID: followee}); err != nil {
				return fmt.Errorf("follow %s -> %s: %w", pf.ID, followee, err)
			}
		}
	}

	for _, mf := range fx.Merchants {
		mf := mf
		m, err := f.CreateMerchant(func(m *models.Merchant) {
			if mf.ID != "" {
				m.ID = mf.ID
			}
			m.ShortName = mf.ShortName
		})
		if err != nil {
			return fmt.Errorf("merchant %s: %w", mf.ShortName, err)
		}
		for _, pf := range mf.Products {
			pf := pf
			if _, err := f.CreateProduct(m, func(p *models.Product) {
				p.Name = pf.Name
				p.PriceCents = pf.PriceCents
			}); err != nil {
				return fmt.Errorf("product %s: %w", pf.Name, err)
			}
		}
	}
	return nil
}
