package clcontent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const profileID = 1

type ProfileSkills struct {
	Frontend     string `json:"frontend"`
	Design       string `json:"design"`
	Backend      string `json:"backend"`
	Optimization string `json:"optimization"`
}

// Profile est un singleton (id 1)
type Profile struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Name      string        `json:"name" gorm:"not null"`
	Title     string        `json:"title"`
	Bio       string        `json:"bio" gorm:"type:text"`
	Bio2      string        `json:"bio2" gorm:"type:text"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Location  string        `json:"location"`
	Skills    ProfileSkills `json:"skills" gorm:"embedded;embeddedPrefix:skills_"`
	Github    string        `json:"github"`
	Linkedin  string        `json:"linkedin"`
	Twitter   string        `json:"twitter"`
	Website   string        `json:"website"`
	CvURL     string        `json:"cvUrl"`
	Image     string        `json:"image"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func DefaultProfile() Profile {
	return Profile{
		ID:       profileID,
		Name:     "Your Name",
		Title:    "Full Stack Developer",
		Bio:      "I'm a passionate developer who loves bridging the gap between design and engineering. With a keen eye for detail and a drive for perfection, I create software that not only works flawlessly but feels amazing to use.",
		Bio2:     "My journey began with a curiosity for how things work on the web, which quickly turned into a career building complex applications for clients around the globe. I believe in writing clean, accessible code and designing intuitive user interfaces.",
		Location: "San Francisco, CA",
		Skills: ProfileSkills{
			Frontend:     "React, TS, Tailwind",
			Design:       "Figma, Motion, UI/UX",
			Backend:      "Node, DBs, API",
			Optimization: "SEO, Performance",
		},
		Github:   "https://github.com",
		Linkedin: "https://linkedin.com",
		Twitter:  "https://twitter.com",
	}
}

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get retourne le profil, créé avec les valeurs par défaut au premier appel
func (s *ProfileStore) Get(ctx context.Context) (*Profile, error) {
	db := s.db.WithContext(ctx)

	var p Profile
	err := db.First(&p, profileID).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lecture profil: %w", err)
	}

	p = DefaultProfile()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("création profil: %w", err)
	}
	if err := db.First(&p, profileID).Error; err != nil {
		return nil, fmt.Errorf("lecture profil: %w", err)
	}
	return &p, nil
}

// Update applique fn au profil courant puis l'enregistre
func (s *ProfileStore) Update(ctx context.Context, fn func(*Profile) error) (*Profile, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	createdAt := p.CreatedAt
	if err := fn(p); err != nil {
		return nil, err
	}
	p.ID = profileID
	p.CreatedAt = createdAt
	if p.Name == "" {
		p.Name = DefaultProfile().Name
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("mise à jour profil: %w", err)
	}
	return p, nil
}
