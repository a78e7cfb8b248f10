package clanalytics

import "time"

const aggregateID = 1

// Visitor représente une adresse pour une journée donnée, avec ses pages vues
type Visitor struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	IP        string      `gorm:"size:64;not null;uniqueIndex:idx_visitor_day" json:"ip"`
	Day       string      `gorm:"size:10;not null;uniqueIndex:idx_visitor_day" json:"day"`
	UserAgent string      `gorm:"type:text" json:"userAgent"`
	Country   string      `gorm:"size:2" json:"country,omitempty"`
	VisitedAt time.Time   `gorm:"index;not null" json:"visitedAt"`
	Pages     []VisitPage `gorm:"foreignKey:VisitorID;constraint:OnDelete:CASCADE" json:"pages"`
}

// VisitPage est une page vue, dans l'ordre d'arrivée
type VisitPage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	VisitorID uint      `gorm:"index;not null" json:"-"`
	Path      string    `gorm:"type:text;not null" json:"page"`
	VisitedAt time.Time `gorm:"not null" json:"visitedAt"`
}

// AggregateStats est la ligne unique des totaux cumulés
type AggregateStats struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	TotalVisits         int64     `gorm:"not null" json:"totalVisits"`
	TotalUniqueVisitors int64     `gorm:"not null" json:"totalUniqueVisitors"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// DailyStat est le détail d'une journée, 90 jours conservés
type DailyStat struct {
	Date           string `gorm:"primaryKey;size:10" json:"date"`
	Visits         int64  `gorm:"not null" json:"visits"`
	UniqueVisitors int64  `gorm:"not null" json:"uniqueVisitors"`
}

func (Visitor) TableName() string {
	return "visitors"
}

func (VisitPage) TableName() string {
	return "visit_pages"
}

func (AggregateStats) TableName() string {
	return "aggregate_stats"
}

func (DailyStat) TableName() string {
	return "daily_stats"
}

// Models retourne les modèles à migrer
func Models() []any {
	return []any{&Visitor{}, &VisitPage{}, &AggregateStats{}, &DailyStat{}}
}
