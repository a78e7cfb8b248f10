package clportfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wasiahamad/Portfolio/internal/clredis"
	"github.com/wasiahamad/Portfolio/internal/gormzerologger"
	"github.com/wasiahamad/Portfolio/internal/models/clanalytics"
	"github.com/wasiahamad/Portfolio/internal/models/clauth"
	"github.com/wasiahamad/Portfolio/internal/models/clcaptchas"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
	"github.com/wasiahamad/Portfolio/internal/models/clcontacts"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/clemail"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Portfolio regroupe les services construits depuis la configuration
type Portfolio struct {
	Configuration *clconfig.Config
	Db            *gorm.DB
	AnalyticsDb   *gorm.DB
	Redis         *redis.Client
	Captcha       *clcaptchas.Captchas
	Auth          *clauth.Authenticator
	Email         *clemail.Service
	Analytics     *clanalytics.AnalyticsService
	Contacts      *clcontacts.Store
	Profile       *clcontent.ProfileStore
	Version       string
	BuildID       string

	geo            *clanalytics.GeoIP
	analyticsRedis *redis.Client
}

func Init(config *clconfig.Config, version string, buildid string) (*Portfolio, error) {
	p := &Portfolio{
		Configuration: config,
		Version:       version,
		BuildID:       buildid,
	}

	if err := p.initDatabase(); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.initServices(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// OpenDatabase ouvre une base sqlite ou mysql avec le logger zerolog
func OpenDatabase(kind, path, dsn, level string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: gormzerologger.New(level)}

	switch kind {
	case "sqlite":
		return gorm.Open(sqlite.Open(path), gormConfig)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("le type de database doit etre sqlite ou mysql")
	}
}

func (p *Portfolio) initDatabase() error {
	conf := p.Configuration
	level := gormzerologger.Level(conf.Logger.Level, conf.Production)

	db, err := OpenDatabase(conf.Database.Db, conf.Database.Path, conf.Database.Dsn, level)
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}
	if err := db.AutoMigrate(append(clcontent.Models(), &clcontacts.Contact{})...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	p.Db = db

	// base analytics séparée si configurée, sinon la base principale
	p.AnalyticsDb = db
	if conf.Analytics.Db != "" {
		adb, err := OpenDatabase(conf.Analytics.Db, conf.Analytics.Path, conf.Analytics.Dsn, level)
		if err != nil {
			return fmt.Errorf("connexion base analytics: %w", err)
		}
		p.AnalyticsDb = adb
	}
	if err := p.AnalyticsDb.AutoMigrate(clanalytics.Models()...); err != nil {
		return fmt.Errorf("migration analytics: %w", err)
	}
	return nil
}

func (p *Portfolio) initServices() error {
	conf := p.Configuration
	logger := cllog.Component("portfolio")

	p.Redis = clredis.NewClient(conf.Database.Redis)
	p.Captcha = clcaptchas.New(p.Redis, conf.Production)
	p.Auth = clauth.New(conf.User, conf.Auth)
	p.Contacts = clcontacts.NewStore(p.Db)
	p.Profile = clcontent.NewProfileStore(p.Db)

	email, err := clemail.NewService(clemail.Config{
		APIKey:      conf.Email.APIKey,
		APIURL:      conf.Email.APIURL,
		SenderEmail: conf.Email.From,
		SenderName:  conf.Email.FromName,
		AdminEmail:  conf.Email.AdminEmail,
		AdminName:   conf.Email.AdminName,
		Timeout:     conf.Email.Timeout(),
		BrandColor:  conf.Email.BrandColor,
		SiteName:    conf.Site.Name,
		SiteURL:     conf.Site.URL,
	}, nil)
	if err != nil {
		return fmt.Errorf("service email: %w", err)
	}
	p.Email = email
	if !email.IsConfigured() {
		logger.Warn().Msg("Email non configuré, les notifications seront ignorées")
	}

	analytics := clanalytics.NewAnalyticsService(p.AnalyticsDb)
	if conf.Analytics.Timezone != "" {
		loc, err := time.LoadLocation(conf.Analytics.Timezone)
		if err != nil {
			return fmt.Errorf("fuseau analytics %q: %w", conf.Analytics.Timezone, err)
		}
		analytics.WithLocation(loc)
	}
	if client := clredis.NewClient(conf.Analytics.Redis); client != nil {
		p.analyticsRedis = client
		analytics.WithRealtime(clredis.NewDayCounter(client))
	}
	if conf.Analytics.GeoIP != "" {
		geo, err := clanalytics.OpenGeoIP(conf.Analytics.GeoIP)
		if err != nil {
			// pays non renseigné, le reste fonctionne
			logger.Warn().Err(err).Msg("GeoIP indisponible")
		} else {
			p.geo = geo
			analytics.WithGeoIP(geo)
		}
	}
	analytics.StartRetention(conf.Analytics.RetentionDays)
	p.Analytics = analytics

	return nil
}

// Close arrête la purge planifiée et libère les connexions
func (p *Portfolio) Close() error {
	var errs []error
	if p.Analytics != nil {
		p.Analytics.Stop()
	}
	if p.geo != nil {
		errs = append(errs, p.geo.Close())
	}
	for _, client := range []*redis.Client{p.Redis, p.analyticsRedis} {
		if client != nil {
			errs = append(errs, client.Close())
		}
	}
	for _, db := range []*gorm.DB{p.Db, p.AnalyticsDb} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
		if p.AnalyticsDb == p.Db {
			break
		}
	}
	return errors.Join(errs...)
}
