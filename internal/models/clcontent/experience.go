package clcontent

import (
	"time"

	"gorm.io/gorm"
)

// Experience porte les champs actuels (role, period, skills) et les champs historiques
// (position, duration, technologies) synchronisés à l'enregistrement
type Experience struct {
	Model
	Role             string     `json:"role"`
	Company          string     `json:"company" gorm:"not null"`
	Period           string     `json:"period"`
	Skills           string     `json:"-" gorm:"type:text"`
	SkillsList       []string   `json:"skills" gorm:"-"`
	SortOrder        int        `json:"order" gorm:"default:0;index"`
	Position         string     `json:"position"`
	Duration         string     `json:"duration"`
	Location         string     `json:"location"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Current          bool       `json:"current"`
	Technologies     string     `json:"-" gorm:"type:text"`
	TechnologiesList []string   `json:"technologies" gorm:"-"`
	Description      string     `json:"description" gorm:"type:text;not null"`
}

// Normalize recopie chaque champ vide depuis son équivalent
func (e *Experience) Normalize() {
	if e.Role == "" {
		e.Role = e.Position
	}
	if e.Position == "" {
		e.Position = e.Role
	}
	if e.Period == "" {
		e.Period = e.Duration
	}
	if e.Duration == "" {
		e.Duration = e.Period
	}
	if len(e.SkillsList) == 0 {
		e.SkillsList = e.TechnologiesList
	}
	if len(e.TechnologiesList) == 0 {
		e.TechnologiesList = e.SkillsList
	}
}

func (e *Experience) BeforeSave(tx *gorm.DB) error {
	e.Normalize()
	e.Skills = joinList(e.SkillsList)
	e.Technologies = joinList(e.TechnologiesList)
	e.SkillsList = splitList(e.Skills)
	e.TechnologiesList = splitList(e.Technologies)
	return nil
}

func (e *Experience) AfterFind(tx *gorm.DB) error {
	e.SkillsList = splitList(e.Skills)
	e.TechnologiesList = splitList(e.Technologies)
	return nil
}

func NewExperienceRepository(db *gorm.DB) *Repository[Experience] {
	return NewRepository[Experience](db, "sort_order asc, created_at desc, id desc")
}
