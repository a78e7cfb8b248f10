package clcontacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("contact non trouvé")
	ErrInvalid  = errors.New("contact invalide")
)

type Contact struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	Email     string     `json:"email" gorm:"type:varchar(255);not null;index"`
	Phone     string     `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Replied   bool       `json:"replied" gorm:"default:false;index"`
	RepliedAt *time.Time `json:"repliedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Validate vérifie les champs obligatoires après nettoyage
func (c *Contact) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Message = strings.TrimSpace(c.Message)

	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		missing = append(missing, "email")
	}
	if c.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Create(ctx context.Context, c *Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 0
	c.Replied = false
	c.RepliedAt = nil
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("enregistrement contact: %w", err)
	}
	return nil
}

// List retourne les contacts, les plus récents d'abord
func (s *Store) List(ctx context.Context) ([]Contact, error) {
	contacts := make([]Contact, 0)
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("lecture contacts: %w", err)
	}
	return contacts, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*Contact, error) {
	var c Contact
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture contact %d: %w", id, err)
	}
	return &c, nil
}

func (s *Store) MarkReplied(ctx context.Context, c *Contact) error {
	now := s.now()
	result := s.db.WithContext(ctx).Model(c).Updates(map[string]any{
		"replied":    true,
		"replied_at": now,
	})
	if result.Error != nil {
		return fmt.Errorf("mise à jour contact %d: %w", c.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	c.Replied = true
	c.RepliedAt = &now
	return nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Contact{}, id)
	if result.Error != nil {
		return fmt.Errorf("suppression contact %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
