package config

import (
	"errors"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
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
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the default search parameters for timetable
// generation. Request payloads may override population/mutation/elite/
// generations within the clamps enforced by the engine.
type SchedulerConfig struct {
	PopulationSize      int
	MutationRate        float64
	EliteRate           float64
	Generations         int
	StagnationLimit     int
	RunTimeout          time.Duration
	ConflictAwareRepair bool
	AsyncWorkers        int
	AsyncBuffer         int
}

// ExportConfig tunes timetable export rendering.
type ExportConfig struct {
	InstitutionName string
	Dir             string
	URLTTL          time.Duration
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
		if !errors.As(err, &notFound) {
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
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		CacheTTL: parseDuration(v.GetString("REDIS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		PopulationSize:      v.GetInt("SCHEDULER_POPULATION_SIZE"),
		MutationRate:        v.GetFloat64("SCHEDULER_MUTATION_RATE"),
		EliteRate:           v.GetFloat64("SCHEDULER_ELITE_RATE"),
		Generations:         v.GetInt("SCHEDULER_GENERATIONS"),
		StagnationLimit:     v.GetInt("SCHEDULER_STAGNATION_LIMIT"),
		RunTimeout:          parseDuration(v.GetString("SCHEDULER_RUN_TIMEOUT"), 2*time.Minute),
		ConflictAwareRepair: v.GetBool("SCHEDULER_CONFLICT_AWARE_REPAIR"),
		AsyncWorkers:        v.GetInt("SCHEDULER_ASYNC_WORKERS"),
		AsyncBuffer:         v.GetInt("SCHEDULER_ASYNC_BUFFER"),
	}

	cfg.Export = ExportConfig{
		InstitutionName: v.GetString("EXPORT_INSTITUTION_NAME"),
		Dir:             v.GetString("EXPORT_DIR"),
		URLTTL:          parseDuration(v.GetString("EXPORT_URL_TTL"), 24*time.Hour),
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
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS_CACHE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_POPULATION_SIZE", 50)
	v.SetDefault("SCHEDULER_MUTATION_RATE", 0.1)
	v.SetDefault("SCHEDULER_ELITE_RATE", 0.1)
	v.SetDefault("SCHEDULER_GENERATIONS", 500)
	v.SetDefault("SCHEDULER_STAGNATION_LIMIT", 200)
	v.SetDefault("SCHEDULER_RUN_TIMEOUT", "2m")
	v.SetDefault("SCHEDULER_CONFLICT_AWARE_REPAIR", false)
	v.SetDefault("SCHEDULER_ASYNC_WORKERS", 1)
	v.SetDefault("SCHEDULER_ASYNC_BUFFER", 4)

	v.SetDefault("EXPORT_INSTITUTION_NAME", "University Timetable")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_URL_TTL", "24h")
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
