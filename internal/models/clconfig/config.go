package clconfig

import (
	"fmt"
	"log/syslog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TrustedProxies  []string        `yaml:"trustedproxies"`
	TrustedPlatform string          `yaml:"trustedplatform"`
	Database        DatabaseConfig  `yaml:"database"`
	User            UserConfig      `yaml:"user"`
	Auth            AuthConfig      `yaml:"auth"`
	Production      bool            `yaml:"production"`
	Listen          ListenConfig    `yaml:"listen"`
	Logger          LoggerConfig    `yaml:"logger"`
	Site            SiteConfig      `yaml:"site"`
	Analytics       AnalyticsConfig `yaml:"analytics"`
	Email           EmailConfig     `yaml:"email"`
	Contact         ContactConfig   `yaml:"contact"`
	CORS            CORSConfig      `yaml:"cors"`
}

type AnalyticsConfig struct {
	Db            string      `yaml:"db"`
	Path          string      `yaml:"path"`
	Dsn           string      `yaml:"dsn"`
	Redis         RedisConfig `yaml:"redis"`
	RetentionDays int         `yaml:"retentiondays"`
	GeoIP         string      `yaml:"geoip"`
	Timezone      string      `yaml:"timezone"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	Db   int    `yaml:"db"`
}

type SiteConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

type EmailConfig struct {
	APIKey       string `yaml:"apikey"`
	APIURL       string `yaml:"apiurl"`
	From         string `yaml:"from"`
	FromName     string `yaml:"fromname"`
	AdminEmail   string `yaml:"adminemail"`
	AdminName    string `yaml:"adminname"`
	TimeoutMs    int    `yaml:"timeoutms"`
	NotifyWaitMs int    `yaml:"notifywaitms"`
	BrandColor   string `yaml:"brandcolor"`
}

type ContactConfig struct {
	Captcha   bool `yaml:"captcha"`
	RateLimit int  `yaml:"ratelimit"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedorigins"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtsecret"`
	TTLHours  int    `yaml:"ttlhours"`
	RateLimit int    `yaml:"ratelimit"`
}

type LoggerConfig struct {
	Level  string             `yaml:"level"`
	File   LoggerFileConfig   `yaml:"file"`
	Syslog LoggerSyslogConfig `yaml:"syslog"`
}

type LoggerFileConfig struct {
	Enable     bool   `yaml:"enable"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxsize"`
	MaxBackups int    `yaml:"maxbackups"`
	MaxAge     int    `yaml:"maxage"`
	Compress   bool   `yaml:"compress"`
}

type LoggerSyslogConfig struct {
	Enable   bool            `yaml:"enable"`
	Protocol string          `yaml:"protocol"`
	Address  string          `yaml:"address"`
	Tag      string          `yaml:"tag"`
	Priority syslog.Priority `yaml:"priority"`
}

type ListenConfig struct {
	Website string `yaml:"website"`
	Metrics string `yaml:"metrics"`
}

type UserConfig struct {
	Login string `yaml:"login"`
	Name  string `yaml:"name"`
	Pass  string `yaml:"pass"`
	Hash  string `yaml:"hash"`
}

type DatabaseConfig struct {
	Redis RedisConfig `yaml:"redis"`
	Db    string      `yaml:"db"`
	Path  string      `yaml:"path"`
	Dsn   string      `yaml:"dsn"`
}

const (
	DefaultEmailTimeoutMs = 15000
	DefaultBrevoURL       = "https://api.brevo.com/v3/smtp/email"
)

func CreateExampleConfig(filename string) (string, error) {
	example := &Config{
		Database: DatabaseConfig{
			Db:   "sqlite",
			Path: "./portfolio.db",
		},
		User: UserConfig{
			Login: "admin@example.com",
			Name:  "Admin",
			Pass:  "admin1234",
		},
		Auth: AuthConfig{
			TTLHours:  24,
			RateLimit: 10,
		},
		Production: false,
		Logger: LoggerConfig{
			Level: "info",
		},
		Listen: ListenConfig{
			Website: "0.0.0.0:5000",
		},
		Site: SiteConfig{
			Name:        "Portfolio",
			URL:         "http://localhost:5173",
			Description: "Blog et projets",
			Language:    "en-US",
		},
		Email: EmailConfig{
			APIKey:     "xkeysib-your-api-key",
			APIURL:     DefaultBrevoURL,
			From:       "noreply@example.com",
			FromName:   "Portfolio",
			AdminEmail: "admin@example.com",
			AdminName:  "Portfolio Admin",
			TimeoutMs:  DefaultEmailTimeoutMs,
			BrandColor: "purple",
		},
		Contact: ContactConfig{
			RateLimit: 5,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:5174"},
		},
	}

	if filename == "/etc/" {
		example.Listen.Website = "127.0.0.1:5000"
		example.Listen.Metrics = "127.0.0.1:9090"
		example.Production = true
		example.Database.Path = "/var/lib/portfolio/sqlite.db"
		example.Logger.File = LoggerFileConfig{
			Enable:     true,
			Path:       "/var/log/portfolio/portfolio.log",
			MaxSize:    100,
			MaxBackups: 30,
			MaxAge:     7,
			Compress:   true,
		}
		filename = "/etc/portfolio/config.yaml"
	}

	return filename, WriteConfigYaml(filename, example)
}

func WriteConfigYaml(filename string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0600)
}

// Charger la configuration YAML
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("impossible de lire le fichier %s: %w", filename, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("erreur de parsing YAML: %w", err)
	}

	return &config, nil
}

// ApplyEnv surcharge la configuration avec les variables d'environnement (.env accepté)
func ApplyEnv(conf *Config, envFiles ...string) {
	_ = godotenv.Load(envFiles...)

	setString(&conf.Email.APIKey, "BREVO_API_KEY")
	setString(&conf.Email.APIURL, "BREVO_API_URL")
	setString(&conf.Email.From, "EMAIL_FROM")
	setString(&conf.Email.FromName, "EMAIL_FROM_NAME")
	setString(&conf.Email.AdminEmail, "ADMIN_EMAIL")
	setString(&conf.Email.AdminName, "ADMIN_NAME")
	setString(&conf.Auth.JWTSecret, "JWT_SECRET")

	if v := os.Getenv("EMAIL_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			conf.Email.TimeoutMs = ms
		} else {
			log.Warn().Str("value", v).Msg("EMAIL_TIMEOUT_MS invalide, ignoré")
		}
	}

	for _, key := range []string{"CLIENT_URL", "ADMIN_URL"} {
		origin := strings.TrimRight(os.Getenv(key), "/")
		if origin != "" && !contains(conf.CORS.AllowedOrigins, origin) {
			conf.CORS.AllowedOrigins = append(conf.CORS.AllowedOrigins, origin)
		}
	}
}

// Normalize valide la configuration et applique les valeurs par défaut
func Normalize(conf *Config) error {
	switch conf.Database.Db {
	case "":
		return fmt.Errorf("database.db ne peut pas être vide")
	case "sqlite":
		if conf.Database.Path == "" {
			return fmt.Errorf("database.path ne peut pas être vide")
		}
	case "mysql":
		if conf.Database.Dsn == "" {
			return fmt.Errorf("database.dsn ne peut pas être vide")
		}
	default:
		return fmt.Errorf("le type de database doit etre sqlite ou mysql")
	}

	if conf.Listen.Website == "" {
		conf.Listen.Website = "localhost:5000"
	}
	if strings.HasPrefix(conf.Listen.Website, ":") {
		conf.Listen.Website = "localhost" + conf.Listen.Website
	}

	if conf.Email.APIURL == "" {
		conf.Email.APIURL = DefaultBrevoURL
	}
	if conf.Email.TimeoutMs <= 0 {
		conf.Email.TimeoutMs = DefaultEmailTimeoutMs
	}
	if conf.Email.NotifyWaitMs <= 0 {
		conf.Email.NotifyWaitMs = conf.Email.TimeoutMs + 1000
	}
	if conf.Email.AdminEmail == "" {
		conf.Email.AdminEmail = conf.Email.From
	}
	if conf.Auth.TTLHours <= 0 {
		conf.Auth.TTLHours = 24
	}
	if conf.Auth.RateLimit <= 0 {
		conf.Auth.RateLimit = 10
	}
	if conf.Contact.RateLimit <= 0 {
		conf.Contact.RateLimit = 5
	}
	if conf.Analytics.RetentionDays < 0 {
		return fmt.Errorf("analytics.retentiondays ne peut pas être négatif")
	}
	if conf.Site.Language == "" {
		conf.Site.Language = "en-US"
	}

	return nil
}

func (e EmailConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

func (e EmailConfig) NotifyWait() time.Duration {
	return time.Duration(e.NotifyWaitMs) * time.Millisecond
}

func CreateExample(shouldCreateExample bool, configFile string) {
	if shouldCreateExample {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}

	_, err := os.Stat(configFile)
	if err != nil && os.IsNotExist(err) {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}
}

func handleExampleCreation(filename string) error {
	if filename == "" {
		filename = "portfolio.yaml"
	}
	filename, err := CreateExampleConfig(filename)
	if err != nil {
		return fmt.Errorf("erreur création exemple: %w", err)
	}

	fmt.Printf("✅ Fichier exemple créé: %s\n", filename)
	fmt.Println("⚠️  user.pass sera automatiquement hash en argon2 dans user.hash au premier lancement")
	return nil
}

func DisplayConfiguration(config *Config, version string) {
	logPrintf("Portfolio version %s", version)

	logPrintf("Mode Production %v", config.Production)
	logPrintf("Administrateur login %s", config.User.Login)

	logPrintf("Database")
	if config.Database.Db == "sqlite" {
		logPrintf("  • Type sqlite")
		logPrintf("  • Path %s", config.Database.Path)
	}
	if config.Database.Db == "mysql" {
		logPrintf("  • Type mysql")
		logPrintf("  • DSN %s", maskDSN(config.Database.Dsn))
	}
	if config.Database.Redis.Addr != "" {
		logPrintf("  • Cache redis %s", config.Database.Redis.Addr)
	}

	logPrintf("Analytics")
	if config.Analytics.Db == "sqlite" && config.Analytics.Path != "" {
		logPrintf("  • Sqlite path %s", config.Analytics.Path)
	} else if config.Analytics.Db == "mysql" && config.Analytics.Dsn != "" {
		logPrintf("  • mysql dsn %s", maskDSN(config.Analytics.Dsn))
	} else {
		logPrintf("  • La base est la même que la principale")
	}
	if config.Analytics.Redis.Addr != "" {
		logPrintf("  • Redis addr %s", config.Analytics.Redis.Addr)
	}
	if config.Analytics.RetentionDays > 0 {
		logPrintf("  • Purge des visiteurs après %d jours", config.Analytics.RetentionDays)
	}
	if config.Analytics.GeoIP != "" {
		logPrintf("  • GeoIP %s", config.Analytics.GeoIP)
	}

	logPrintf("Email")
	logPrintf("  • API %s", config.Email.APIURL)
	logPrintf("  • Clé %s", maskSecret(config.Email.APIKey))
	logPrintf("  • Expéditeur %s <%s>", config.Email.FromName, config.Email.From)
	logPrintf("  • Admin %s <%s>", config.Email.AdminName, config.Email.AdminEmail)
	logPrintf("  • Timeout %dms", config.Email.TimeoutMs)

	logPrintf("Logger en level %s", config.Logger.Level)
	if config.Logger.File.Enable {
		logPrintf("  Log en fichier activé")
		logPrintf("  • Path %s", config.Logger.File.Path)
		logPrintf("  • Max size %d", config.Logger.File.MaxSize)
		logPrintf("  • Max age %d", config.Logger.File.MaxAge)
		logPrintf("  • Max backup %d", config.Logger.File.MaxBackups)
		logPrintf("  • Compression %v", config.Logger.File.Compress)
	} else {
		logPrintf("  Log en fichier désactivé")
	}
	if config.Logger.Syslog.Enable {
		logPrintf("  Log en syslog activé")
		logPrintf("  • Protocol %s", config.Logger.Syslog.Protocol)
		logPrintf("  • Address %s", config.Logger.Syslog.Address)
		logPrintf("  • Tag %s", config.Logger.Syslog.Tag)
	} else {
		logPrintf("  Log en syslog désactivé")
	}

	logPrintf("CORS %s", strings.Join(config.CORS.AllowedOrigins, ", "))
}

func maskSecret(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:8] + strings.Repeat("*", 8)
}

// masque le mot de passe d'un dsn mysql user:pass@tcp(...)
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at == -1 || colon == -1 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "****" + dsn[at:]
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Info logue avec printf
func logPrintf(format string, a ...any) {
	log.Info().Msg(fmt.Sprintf(format, a...))
}
