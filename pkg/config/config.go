package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	GitHub    GitHubConfig
	Dashboard DashboardConfig
	Org       OrgConfig
	Refresh   RefreshConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AdminConfig holds the single operator account allowed to trigger refreshes.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// GitHubConfig points the upstream client at an organisation.
type GitHubConfig struct {
	APIURL  string
	Org     string
	Token   string
	Repos   []string
	Timeout time.Duration
}

// DashboardConfig governs page composition limits and cache tuning.
type DashboardConfig struct {
	CacheEnabled        bool
	CacheTTL            time.Duration
	FeedLimit           int
	ReleasesLimit       int
	ProjectsLimit       int
	ContributorsLimit   int
	LeaderboardLimit    int
	ActiveProjectLabels []string
}

// OrgConfig carries the free text shown on the home page.
type OrgConfig struct {
	Name             string
	Info             string
	ContributorsInfo string
}

// RefreshConfig controls background warming of upstream caches.
type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
	Retries  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TZ_NAME")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Admin = AdminConfig{
		Username:     v.GetString("ADMIN_USERNAME"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	cfg.GitHub = GitHubConfig{
		APIURL:  v.GetString("GITHUB_API_URL"),
		Org:     v.GetString("GITHUB_ORG"),
		Token:   v.GetString("GITHUB_TOKEN"),
		Repos:   splitAndTrim(v.GetString("GITHUB_REPOS")),
		Timeout: parseDuration(v.GetString("GITHUB_TIMEOUT"), 10*time.Second),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled:        v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:            parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		FeedLimit:           v.GetInt("DASHBOARD_FEED_LIMIT"),
		ReleasesLimit:       v.GetInt("DASHBOARD_RELEASES_LIMIT"),
		ProjectsLimit:       v.GetInt("DASHBOARD_PROJECTS_LIMIT"),
		ContributorsLimit:   v.GetInt("DASHBOARD_CONTRIBUTORS_LIMIT"),
		LeaderboardLimit:    v.GetInt("DASHBOARD_LEADERBOARD_LIMIT"),
		ActiveProjectLabels: splitAndTrim(v.GetString("ACTIVE_PROJECT_LABELS")),
	}

	cfg.Org = OrgConfig{
		Name:             v.GetString("ORG_NAME"),
		Info:             v.GetString("ORG_INFO"),
		ContributorsInfo: v.GetString("CONTRIBUTORS_INFO"),
	}

	cfg.Refresh = RefreshConfig{
		Enabled:  v.GetBool("ENABLE_REFRESH"),
		Interval: parseDuration(v.GetString("REFRESH_INTERVAL"), 15*time.Minute),
		Workers:  v.GetInt("REFRESH_WORKERS"),
		Retries:  v.GetInt("REFRESH_RETRIES"),
	}

	return cfg
}

// Location resolves the configured calendar location, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TZ_NAME", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "contributors")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "1h")
	v.SetDefault("JWT_ISSUER", "contrib-dashboard")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("GITHUB_ORG", "")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_REPOS", "")
	v.SetDefault("GITHUB_TIMEOUT", "10s")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_FEED_LIMIT", 10)
	v.SetDefault("DASHBOARD_RELEASES_LIMIT", 3)
	v.SetDefault("DASHBOARD_PROJECTS_LIMIT", 6)
	v.SetDefault("DASHBOARD_CONTRIBUTORS_LIMIT", 8)
	v.SetDefault("DASHBOARD_LEADERBOARD_LIMIT", 5)
	v.SetDefault("ACTIVE_PROJECT_LABELS", "P-critical,P-high")

	v.SetDefault("ORG_NAME", "Community")
	v.SetDefault("ORG_INFO", "")
	v.SetDefault("CONTRIBUTORS_INFO", "")

	v.SetDefault("ENABLE_REFRESH", false)
	v.SetDefault("REFRESH_INTERVAL", "15m")
	v.SetDefault("REFRESH_WORKERS", 1)
	v.SetDefault("REFRESH_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
