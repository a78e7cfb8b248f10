package clcontent

import "gorm.io/gorm"

type Project struct {
	Model
	Title            string   `json:"title" gorm:"not null"`
	Description      string   `json:"description" gorm:"type:text;not null"`
	Image            string   `json:"image" gorm:"type:text"`
	Technologies     string   `json:"-" gorm:"type:text"`
	TechnologiesList []string `json:"technologies" gorm:"-"`
	Github           string   `json:"github"`
	LiveURL          string   `json:"liveUrl"`
}

func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Technologies = joinList(p.TechnologiesList)
	p.TechnologiesList = splitList(p.Technologies)
	return nil
}

func (p *Project) AfterFind(tx *gorm.DB) error {
	p.TechnologiesList = splitList(p.Technologies)
	return nil
}

func NewProjectRepository(db *gorm.DB) *Repository[Project] {
	return NewRepository[Project](db, "created_at desc, id desc")
}
