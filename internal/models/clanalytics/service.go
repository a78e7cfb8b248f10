package clanalytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wasiahamad/Portfolio/internal/metrics"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dayLayout       = "2006-01-02"
	maxDailyStats   = 90
	statsWindowDays = 30
	defaultPage     = 1
	defaultLimit    = 50
	maxLimit        = 500
	defaultPagePath = "/"
	unknownAgent    = "Unknown"
)

var ErrEmptyAddress = errors.New("adresse du visiteur vide")

// RealtimeCounter garde les compteurs du jour hors base (Redis)
type RealtimeCounter interface {
	Hit(ctx context.Context, day, address string) error
	Read(ctx context.Context, day string) (pageViews int64, uniqueVisitors int64, err error)
}

// CountryResolver retourne le code pays ISO d'une adresse, "" si inconnu
type CountryResolver interface {
	Country(address string) string
}

type AnalyticsService struct {
	db       *gorm.DB
	realtime RealtimeCounter
	geo      CountryResolver
	cron     *cron.Cron
	loc      *time.Location
	now      func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db:  db,
		loc: time.Local,
		now: time.Now,
	}
}

func (as *AnalyticsService) WithRealtime(counter RealtimeCounter) *AnalyticsService {
	as.realtime = counter
	return as
}

func (as *AnalyticsService) WithGeoIP(resolver CountryResolver) *AnalyticsService {
	as.geo = resolver
	return as
}

// WithLocation fixe le fuseau qui définit le jour calendaire
func (as *AnalyticsService) WithLocation(loc *time.Location) *AnalyticsService {
	if loc != nil {
		as.loc = loc
	}
	return as
}

func (as *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	as.now = now
	return as
}

func (as *AnalyticsService) clock() time.Time {
	return as.now().In(as.loc)
}

// RecordVisit enregistre une page vue. unique vaut true pour la première visite du jour de cette adresse.
func (as *AnalyticsService) RecordVisit(ctx context.Context, address, userAgent, page string) (bool, error) {
	if address == "" {
		return false, ErrEmptyAddress
	}
	if page == "" {
		page = defaultPagePath
	}
	if userAgent == "" {
		userAgent = unknownAgent
	}

	now := as.clock()
	day := now.Format(dayLayout)

	country := ""
	if as.geo != nil {
		country = as.geo.Country(address)
	}

	var unique bool
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visitor := Visitor{
			IP:        address,
			Day:       day,
			UserAgent: userAgent,
			Country:   country,
			VisitedAt: now,
		}

		// la contrainte (ip, day) tranche entre requêtes concurrentes
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&visitor)
		if res.Error != nil {
			return fmt.Errorf("insertion visiteur: %w", res.Error)
		}
		unique = res.RowsAffected == 1

		if !unique {
			visitor = Visitor{}
			if err := tx.Where("ip = ? AND day = ?", address, day).First(&visitor).Error; err != nil {
				return fmt.Errorf("lecture visiteur: %w", err)
			}
		}

		if err := tx.Create(&VisitPage{VisitorID: visitor.ID, Path: page, VisitedAt: now}).Error; err != nil {
			return fmt.Errorf("ajout page: %w", err)
		}

		return as.updateAggregate(tx, now, unique)
	})
	if err != nil {
		metrics.RecordVisitError()
		return false, err
	}

	metrics.RecordVisit(unique)

	if as.realtime != nil {
		if err := as.realtime.Hit(ctx, day, address); err != nil {
			cllog.Ctx(ctx).Warn().Err(err).Msg("Compteur temps réel indisponible")
		}
	}

	return unique, nil
}

// UpdateAggregate incrémente les totaux et la statistique du jour
func (as *AnalyticsService) UpdateAggregate(ctx context.Context, isUnique bool) error {
	now := as.clock()
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return as.updateAggregate(tx, now, isUnique)
	})
}

func (as *AnalyticsService) updateAggregate(tx *gorm.DB, now time.Time, isUnique bool) error {
	var u int64
	if isUnique {
		u = 1
	}

	if err := ensureAggregate(tx, now); err != nil {
		return err
	}

	err := tx.Model(&AggregateStats{}).
		Where("id = ?", aggregateID).
		Updates(map[string]any{
			"total_visits":          gorm.Expr("total_visits + ?", 1),
			"total_unique_visitors": gorm.Expr("total_unique_visitors + ?", u),
			"last_updated":          now,
		}).Error
	if err != nil {
		return fmt.Errorf("mise à jour totaux: %w", err)
	}

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"visits":          gorm.Expr("visits + ?", 1),
			"unique_visitors": gorm.Expr("unique_visitors + ?", u),
		}),
	}).Create(&DailyStat{Date: now.Format(dayLayout), Visits: 1, UniqueVisitors: u}).Error
	if err != nil {
		return fmt.Errorf("mise à jour statistique du jour: %w", err)
	}

	return trimDailyStats(tx)
}

func ensureAggregate(tx *gorm.DB, now time.Time) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&AggregateStats{ID: aggregateID, LastUpdated: now}).Error
	if err != nil {
		return fmt.Errorf("création totaux: %w", err)
	}
	return nil
}

// trimDailyStats ne garde que les 90 dates les plus récentes
func trimDailyStats(tx *gorm.DB) error {
	var cutoff []string
	err := tx.Model(&DailyStat{}).
		Order("date desc").
		Offset(maxDailyStats).
		Limit(1).
		Pluck("date", &cutoff).Error
	if err != nil {
		return fmt.Errorf("recherche dates à purger: %w", err)
	}
	if len(cutoff) == 0 {
		return nil
	}

	if err := tx.Where("date <= ?", cutoff[0]).Delete(&DailyStat{}).Error; err != nil {
		return fmt.Errorf("purge statistiques journalières: %w", err)
	}
	return nil
}

// Stats est le tableau de bord analytics
type Stats struct {
	TotalVisits    int64       `json:"totalVisits"`
	UniqueVisitors int64       `json:"uniqueVisitors"`
	TodayVisitors  int64       `json:"todayVisitors"`
	WeekVisitors   int64       `json:"weekVisitors"`
	MonthVisitors  int64       `json:"monthVisitors"`
	DailyStats     []DailyStat `json:"dailyStats"`
	LastUpdated    time.Time   `json:"lastUpdated"`
}

// GetStats retourne les totaux, les comptes glissants et les 30 derniers jours
func (as *AnalyticsService) GetStats(ctx context.Context) (*Stats, error) {
	db := as.db.WithContext(ctx)
	now := as.clock()

	if err := ensureAggregate(db, now); err != nil {
		return nil, err
	}

	var agg AggregateStats
	if err := db.First(&agg, aggregateID).Error; err != nil {
		return nil, fmt.Errorf("lecture totaux: %w", err)
	}

	stats := &Stats{
		TotalVisits:    agg.TotalVisits,
		UniqueVisitors: agg.TotalUniqueVisitors,
		LastUpdated:    agg.LastUpdated,
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, as.loc)
	windows := []struct {
		since time.Time
		dst   *int64
	}{
		{startOfDay, &stats.TodayVisitors},
		{now.AddDate(0, 0, -7), &stats.WeekVisitors},
		{now.AddDate(0, 0, -statsWindowDays), &stats.MonthVisitors},
	}
	for _, w := range windows {
		if err := db.Model(&Visitor{}).Where("visited_at >= ?", w.since).Count(w.dst).Error; err != nil {
			return nil, fmt.Errorf("comptage visiteurs: %w", err)
		}
	}

	var daily []DailyStat
	if err := db.Order("date desc").Limit(statsWindowDays).Find(&daily).Error; err != nil {
		return nil, fmt.Errorf("lecture statistiques journalières: %w", err)
	}
	stats.DailyStats = make([]DailyStat, 0, len(daily))
	for i := len(daily) - 1; i >= 0; i-- {
		stats.DailyStats = append(stats.DailyStats, daily[i])
	}

	return stats, nil
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type VisitorList struct {
	Visitors   []Visitor  `json:"visitors"`
	Pagination Pagination `json:"pagination"`
}

// ListVisitors retourne une page de visiteurs, du plus récent au plus ancien
func (as *AnalyticsService) ListVisitors(ctx context.Context, page, limit int) (*VisitorList, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	db := as.db.WithContext(ctx)

	var total int64
	if err := db.Model(&Visitor{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("comptage visiteurs: %w", err)
	}

	visitors := make([]Visitor, 0)
	err := db.Preload("Pages", func(db *gorm.DB) *gorm.DB {
		return db.Order("visited_at asc, id asc")
	}).
		Order("visited_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&visitors).Error
	if err != nil {
		return nil, fmt.Errorf("lecture visiteurs: %w", err)
	}

	return &VisitorList{
		Visitors: visitors,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

type RealtimeStats struct {
	Date                string `json:"date"`
	TodayPageViews      int64  `json:"todayPageViews"`
	TodayUniqueVisitors int64  `json:"todayUniqueVisitors"`
	Source              string `json:"source"`
}

// GetRealtimeStats lit les compteurs Redis, ou la statistique du jour en base
func (as *AnalyticsService) GetRealtimeStats(ctx context.Context) (*RealtimeStats, error) {
	day := as.clock().Format(dayLayout)

	if as.realtime != nil {
		pageViews, uniqueVisitors, err := as.realtime.Read(ctx, day)
		if err == nil {
			return &RealtimeStats{Date: day, TodayPageViews: pageViews, TodayUniqueVisitors: uniqueVisitors, Source: "redis"}, nil
		}
		cllog.Ctx(ctx).Warn().Err(err).Msg("Redis indisponible, lecture en base")
	}

	var stat DailyStat
	err := as.db.WithContext(ctx).Where("date = ?", day).Limit(1).Find(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("lecture statistique du jour: %w", err)
	}

	return &RealtimeStats{Date: day, TodayPageViews: stat.Visits, TodayUniqueVisitors: stat.UniqueVisitors, Source: "database"}, nil
}

// PurgeVisitors supprime les visiteurs (et leurs pages) antérieurs à before
func (as *AnalyticsService) PurgeVisitors(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&Visitor{}).Select("id").Where("visited_at < ?", before)
		if err := tx.Where("visitor_id IN (?)", old).Delete(&VisitPage{}).Error; err != nil {
			return err
		}
		res := tx.Where("visited_at < ?", before).Delete(&Visitor{})
		purged = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("purge visiteurs: %w", err)
	}
	metrics.RecordVisitorsPurged(purged)
	return purged, nil
}

// StartRetention planifie la purge quotidienne, désactivée si days <= 0
func (as *AnalyticsService) StartRetention(days int) {
	if days <= 0 || as.cron != nil {
		return
	}

	logger := cllog.Component("analytics")
	as.cron = cron.New(cron.WithLocation(as.loc))
	// tous les jours à 2h du matin
	_, err := as.cron.AddFunc("0 2 * * *", func() {
		before := as.clock().AddDate(0, 0, -days)
		n, err := as.PurgeVisitors(context.Background(), before)
		if err != nil {
			logger.Error().Err(err).Msg("Purge analytics échouée")
			return
		}
		logger.Info().Int64("deleted", n).Int("retention_days", days).Msg("Purge analytics terminée")
	})
	if err != nil {
		logger.Error().Err(err).Msg("Planification purge analytics impossible")
		return
	}
	as.cron.Start()
}

// Stop arrête la purge planifiée et attend la tâche en cours
func (as *AnalyticsService) Stop() {
	if as.cron != nil {
		<-as.cron.Stop().Done()
	}
}
