package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
	Catalog   CatalogConfig
	Advisor   AdvisorConfig
	Export    ExportConfig
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

	StatementTimeout time.Duration
	AutoMigrate      bool
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// JWTConfig describes the access tokens issued by the school's identity service.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Audience   []string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimetableConfig holds the defaults new drafts start from and draft session tuning.
type TimetableConfig struct {
	SchoolDays     []string
	DayStart       string
	DayEnd         string
	SessionMinutes int
	SessionTTL     time.Duration
	MaxViolations  int
	LockTimeout    time.Duration
}

// DraftDefaults converts the configured school week into the config new drafts start from.
func (t TimetableConfig) DraftDefaults() (models.DraftConfig, error) {
	cfg := models.DraftConfig{SessionMinutes: t.SessionMinutes}
	for _, raw := range t.SchoolDays {
		day, err := models.ParseDay(raw)
		if err != nil {
			return models.DraftConfig{}, fmt.Errorf("TIMETABLE_SCHOOL_DAYS: %w", err)
		}
		cfg.SchoolDays = append(cfg.SchoolDays, day)
	}
	var err error
	if cfg.DayStart, err = models.ParseClock(t.DayStart); err != nil {
		return models.DraftConfig{}, fmt.Errorf("TIMETABLE_DAY_START: %w", err)
	}
	if cfg.DayEnd, err = models.ParseClock(t.DayEnd); err != nil {
		return models.DraftConfig{}, fmt.Errorf("TIMETABLE_DAY_END: %w", err)
	}
	if cfg.DayEnd <= cfg.DayStart {
		return models.DraftConfig{}, fmt.Errorf("TIMETABLE_DAY_END must be after TIMETABLE_DAY_START")
	}
	return cfg, nil
}

// CatalogConfig governs the Redis catalog snapshot cache.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AdvisorConfig toggles the language-model replacement advisor.
type AdvisorConfig struct {
	Enabled      bool
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	MaxProposals int
}

// ExportConfig tunes timetable exports.
type ExportConfig struct {
	CalendarWeeks int
	Timezone      string
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		StatementTimeout: parseDuration(v.GetString("DB_STATEMENT_TIMEOUT"), 0),
		AutoMigrate:      v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 0),
		IOTimeout:   parseDuration(v.GetString("REDIS_IO_TIMEOUT"), 0),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Audience:   splitAndTrim(v.GetString("JWT_AUDIENCE")),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timetable = TimetableConfig{
		SchoolDays:     splitAndTrim(v.GetString("TIMETABLE_SCHOOL_DAYS")),
		DayStart:       v.GetString("TIMETABLE_DAY_START"),
		DayEnd:         v.GetString("TIMETABLE_DAY_END"),
		SessionMinutes: v.GetInt("TIMETABLE_SESSION_MINUTES"),
		SessionTTL:     parseDuration(v.GetString("TIMETABLE_SESSION_TTL"), 30*time.Minute),
		MaxViolations:  v.GetInt("TIMETABLE_MAX_BATCH_VIOLATIONS"),
		LockTimeout:    parseDuration(v.GetString("TIMETABLE_LOCK_TIMEOUT"), 0),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Advisor = AdvisorConfig{
		Enabled:      v.GetBool("ENABLE_REPLACEMENT_ADVISOR"),
		APIKey:       v.GetString("OPENAI_API_KEY"),
		Model:        v.GetString("OPENAI_MODEL"),
		BaseURL:      v.GetString("OPENAI_BASE_URL"),
		Timeout:      parseDuration(v.GetString("ADVISOR_TIMEOUT"), 8*time.Second),
		MaxProposals: v.GetInt("ADVISOR_MAX_PROPOSALS"),
	}

	cfg.Export = ExportConfig{
		CalendarWeeks: v.GetInt("EXPORT_CALENDAR_WEEKS"),
		Timezone:      v.GetString("EXPORT_TIMEZONE"),
	}

	if _, err := cfg.Timetable.DraftDefaults(); err != nil {
		return nil, err
	}
	if cfg.Advisor.Enabled && cfg.Advisor.APIKey == "" {
		return nil, fmt.Errorf("ENABLE_REPLACEMENT_ADVISOR requires OPENAI_API_KEY")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sma_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_STATEMENT_TIMEOUT", "")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "")
	v.SetDefault("REDIS_IO_TIMEOUT", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_SCHOOL_DAYS", "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY")
	v.SetDefault("TIMETABLE_DAY_START", "07:00")
	v.SetDefault("TIMETABLE_DAY_END", "15:00")
	v.SetDefault("TIMETABLE_SESSION_MINUTES", 45)
	v.SetDefault("TIMETABLE_SESSION_TTL", "30m")
	v.SetDefault("TIMETABLE_MAX_BATCH_VIOLATIONS", 200)
	v.SetDefault("TIMETABLE_LOCK_TIMEOUT", "")

	v.SetDefault("ENABLE_CATALOG_CACHE", true)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_REPLACEMENT_ADVISOR", false)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("ADVISOR_TIMEOUT", "8s")
	v.SetDefault("ADVISOR_MAX_PROPOSALS", 3)

	v.SetDefault("EXPORT_CALENDAR_WEEKS", 18)
	v.SetDefault("EXPORT_TIMEZONE", "Asia/Jakarta")
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
