package clcontent

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalid = errors.New("champs obligatoires manquants")

// Model reprend gorm.Model sans suppression logique, clés JSON en camelCase
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (m *Model) Meta() *Model {
	return m
}

// Models liste les tables du contenu pour AutoMigrate
func Models() []any {
	return []any{&Profile{}, &Project{}, &Blog{}, &Experience{}}
}

func required(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"title", "company", "description", "content"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalid, errors.New(strings.Join(missing, ", ")))
	}
	return nil
}

func (p *Project) Validate() error {
	return required(map[string]string{"title": p.Title, "description": p.Description})
}

func (b *Blog) Validate() error {
	return required(map[string]string{"title": b.Title, "content": b.Content})
}

func (e *Experience) Validate() error {
	return required(map[string]string{"company": e.Company, "description": e.Description})
}
