package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/wasiahamad/Portfolio/internal/clmiddleware"
	handlers_analytics "github.com/wasiahamad/Portfolio/internal/handlers/analytics"
	handlers_auth "github.com/wasiahamad/Portfolio/internal/handlers/auth"
	handlers_contacts "github.com/wasiahamad/Portfolio/internal/handlers/contacts"
	handlers_content "github.com/wasiahamad/Portfolio/internal/handlers/content"
	handlers_rss "github.com/wasiahamad/Portfolio/internal/handlers/rss"
	"github.com/wasiahamad/Portfolio/internal/models/clauth"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"github.com/wasiahamad/Portfolio/internal/models/clmarkdown"
	"github.com/wasiahamad/Portfolio/internal/models/clportfolio"
)

const VERSION string = "1.0.0"

var BuildID string

const shutdownTimeout = 30 * time.Second

func parseCommandLineArgs() (configFile string, shouldCreateExample bool, versionDisplay bool, err error) {
	var config = flag.String("config", "", "Fichier de configuration YAML")
	var example = flag.Bool("example", false, "Créer un fichier de configuration exemple")
	var version = flag.Bool("version", false, "version du produit")
	flag.Parse()

	if *version {
		return "", false, true, nil
	}

	if *example {
		return "", true, false, nil
	}

	if *config == "" {
		return "", false, false, fmt.Errorf("fichier de configuration requis")
	}

	return *config, false, false, nil
}

// prepareCredentials remplace user.pass par son hash argon2 et génère auth.jwtsecret si absent.
// Retourne true si la configuration doit être réécrite.
func prepareCredentials(conf *clconfig.Config) (bool, error) {
	changed := false

	if conf.User.Pass != "" {
		hash, err := clauth.HashPassword(conf.User.Pass)
		if err != nil {
			return false, fmt.Errorf("user.pass: %w", err)
		}
		conf.User.Hash = hash
		conf.User.Pass = ""
		changed = true
	}
	if conf.User.Hash == "" {
		return false, fmt.Errorf("user.pass ou user.hash doit être renseigné")
	}

	if conf.Auth.JWTSecret == "" {
		secret, err := clauth.GenerateSecret()
		if err != nil {
			return false, err
		}
		conf.Auth.JWTSecret = secret
		changed = true
	}

	return changed, nil
}

func initConfiguration() *clconfig.Config {
	configFile, shouldCreateExample, versionDisplay, err := parseCommandLineArgs()
	if err != nil {
		fmt.Println("Usage:")
		fmt.Println("  portfolio -config portfolio.yaml")
		fmt.Println("  portfolio -example  (pour créer un fichier exemple)")
		fmt.Println("  portfolio -version  (affiche la version)")
		os.Exit(1)
	}

	if versionDisplay {
		println(VERSION)
		os.Exit(0)
	}

	clconfig.CreateExample(shouldCreateExample, configFile)

	conf, err := clconfig.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	changed, err := prepareCredentials(conf)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	// les secrets issus de l'environnement ne sont pas réécrits dans le fichier
	if changed {
		if err := clconfig.WriteConfigYaml(configFile, conf); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}

	clconfig.ApplyEnv(conf)
	if err := clconfig.Normalize(conf); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	return conf
}

func newServer(conf *clconfig.Config) *gin.Engine {
	if conf.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if conf.TrustedProxies != nil {
		if err := r.SetTrustedProxies(conf.TrustedProxies); err != nil {
			log.Warn().Err(err).Msg("trustedproxies invalide")
		}
	}
	if conf.TrustedPlatform != "" {
		switch conf.TrustedPlatform {
		case "cloudflare":
			r.TrustedPlatform = gin.PlatformCloudflare
		case "google":
			r.TrustedPlatform = gin.PlatformGoogleAppEngine
		case "flyio":
			r.TrustedPlatform = gin.PlatformFlyIO
		default:
			r.TrustedPlatform = conf.TrustedPlatform
		}
	}

	clmiddleware.InitMiddleware(r, conf.CORS.AllowedOrigins)
	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Portfolio API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func setRoutes(r *gin.Engine, p *clportfolio.Portfolio) {
	conf := p.Configuration
	adminRequired := clmiddleware.AuthRequired(p.Auth)

	var captcha handlers_contacts.CaptchaVerifier
	if conf.Contact.Captcha {
		captcha = p.Captcha
	}

	analytics := handlers_analytics.NewAnalyticsHandler(p.Analytics)
	contacts := handlers_contacts.NewContactsHandler(p.Contacts, p.Email, captcha, conf.Email.NotifyWait())
	auth := handlers_auth.NewAuthHandler(p.Auth)
	profile := handlers_content.NewProfileHandler(p.Profile)
	projects := handlers_content.NewProjects(p.Db)
	blogs := handlers_content.NewBlogs(p.Db)
	experiences := handlers_content.NewExperiences(p.Db)
	rss := handlers_rss.NewRSSHandler(clcontent.NewBlogRepository(p.Db), conf.Site, p.Version)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	r.GET("/", healthHandler)
	r.GET("/rss.xml", rss.Feed)
	r.GET("/rss.xml/:category", rss.Feed)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/captcha", p.Captcha.CaptchaHandler)

		api.POST("/auth/login", clmiddleware.NewLimiter(conf.Auth.RateLimit, "login"), auth.Login)
		api.GET("/auth/me", adminRequired, auth.Me)

		api.POST("/analytics/track", analytics.Track)
		api.GET("/analytics/stats", adminRequired, analytics.GetStats)
		api.GET("/analytics/visitors", adminRequired, analytics.GetVisitors)
		api.GET("/analytics/realtime", adminRequired, analytics.GetRealtimeStats)

		api.POST("/contacts", clmiddleware.NewLimiter(conf.Contact.RateLimit, "contacts"), contacts.Create)
		api.GET("/contacts", adminRequired, contacts.List)
		api.POST("/contacts/reply/:id", adminRequired, contacts.Reply)
		api.DELETE("/contacts/:id", adminRequired, contacts.Delete)

		api.GET("/profile", profile.Get)
		api.POST("/profile", adminRequired, profile.Update)
		api.PUT("/profile", adminRequired, profile.Update)

		api.GET("/projects", projects.List)
		api.GET("/projects/:id", projects.Get)
		api.POST("/projects", adminRequired, projects.Create)
		api.PUT("/projects/:id", adminRequired, projects.Update)
		api.DELETE("/projects/:id", adminRequired, projects.Delete)

		api.GET("/blogs", blogs.List)
		api.GET("/blogs/:id", blogs.Get)
		api.POST("/blogs", adminRequired, blogs.Create)
		api.PUT("/blogs/:id", adminRequired, blogs.Update)
		api.DELETE("/blogs/:id", adminRequired, blogs.Delete)

		api.GET("/experience", experiences.List)
		api.GET("/experience/:id", experiences.Get)
		api.POST("/experience", adminRequired, experiences.Create)
		api.PUT("/experience/:id", adminRequired, experiences.Update)
		api.DELETE("/experience/:id", adminRequired, experiences.Delete)
	}
}

// startServer bloque jusqu'à SIGINT/SIGTERM puis arrête proprement les serveurs
func startServer(r *gin.Engine, conf *clconfig.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if conf.Listen.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: conf.Listen.Metrics, Handler: mux}
		log.Info().Msgf("Metrics disponible sur http://%s/metrics", conf.Listen.Metrics)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Serveur metrics arrêté")
			}
		}()
	}

	server := &http.Server{
		Addr:              conf.Listen.Website,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API démarrée sur http://%s/api", conf.Listen.Website)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Arrêt du serveur...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return server.Shutdown(shutdownCtx)
}

func main() {
	if BuildID == "" {
		BuildID = VERSION
	}

	conf := initConfiguration()
	cllog.InitLogger(conf.Logger, conf.Production)
	clconfig.DisplayConfiguration(conf, VERSION)
	clmarkdown.InitMarkdown()

	p, err := clportfolio.Init(conf, VERSION, BuildID)
	if err != nil {
		log.Fatal().Err(err).Msg("Initialisation impossible")
	}
	defer p.Close()

	r := newServer(conf)
	setRoutes(r, p)

	if err := startServer(r, conf); err != nil {
		log.Error().Err(err).Msg("Serveur arrêté")
	}
}
