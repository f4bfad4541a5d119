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
	Env string

	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Export    ExportConfig
	Queue     QueueConfig
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

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the tuning knobs for a generation run.
type SchedulerConfig struct {
	UltraFast              bool
	SkipFacultySchedules   bool
	SkipOverworkCheck      bool
	GreedySuccessThreshold float64
	MaxLabsPerDay          int
	OverworkThresholdHours int
	OddLabPolicy           string
	SolverBudget           time.Duration
	RunTimeout             time.Duration
}

// ExportConfig configures timetable artifact generation.
type ExportConfig struct {
	StorageDir      string
	Formats         []string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// QueueConfig configures the asynchronous run dispatcher.
type QueueConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	ResultTTL         time.Duration
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

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		UltraFast:              v.GetBool("SCHEDULER_ULTRA_FAST"),
		SkipFacultySchedules:   v.GetBool("SCHEDULER_SKIP_FACULTY_SCHEDULES"),
		SkipOverworkCheck:      v.GetBool("SCHEDULER_SKIP_OVERWORK_CHECK"),
		GreedySuccessThreshold: v.GetFloat64("SCHEDULER_GREEDY_SUCCESS_THRESHOLD"),
		MaxLabsPerDay:          v.GetInt("SCHEDULER_MAX_LABS_PER_DAY"),
		OverworkThresholdHours: v.GetInt("SCHEDULER_OVERWORK_THRESHOLD_HOURS"),
		OddLabPolicy:           v.GetString("SCHEDULER_ODD_LAB_POLICY"),
		SolverBudget:           parseDuration(v.GetString("SCHEDULER_SOLVER_BUDGET"), time.Minute),
		RunTimeout:             parseDuration(v.GetString("SCHEDULER_RUN_TIMEOUT"), 5*time.Minute),
	}

	cfg.Export = ExportConfig{
		StorageDir:      v.GetString("EXPORT_STORAGE_DIR"),
		Formats:         splitAndTrim(v.GetString("EXPORT_FORMATS")),
		SignedURLSecret: v.GetString("EXPORT_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORT_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Queue = QueueConfig{
		WorkerConcurrency: v.GetInt("QUEUE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("QUEUE_WORKER_RETRIES"),
		ResultTTL:         parseDuration(v.GetString("QUEUE_RESULT_TTL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_ULTRA_FAST", false)
	v.SetDefault("SCHEDULER_SKIP_FACULTY_SCHEDULES", false)
	v.SetDefault("SCHEDULER_SKIP_OVERWORK_CHECK", false)
	v.SetDefault("SCHEDULER_GREEDY_SUCCESS_THRESHOLD", 0.7)
	v.SetDefault("SCHEDULER_MAX_LABS_PER_DAY", 3)
	v.SetDefault("SCHEDULER_OVERWORK_THRESHOLD_HOURS", 40)
	v.SetDefault("SCHEDULER_ODD_LAB_POLICY", "split")
	v.SetDefault("SCHEDULER_SOLVER_BUDGET", "60s")
	v.SetDefault("SCHEDULER_RUN_TIMEOUT", "5m")

	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORT_FORMATS", "csv,pdf")
	v.SetDefault("EXPORT_SIGNED_URL_SECRET", "dev_export_secret")
	v.SetDefault("EXPORT_SIGNED_URL_TTL", "24h")

	v.SetDefault("QUEUE_WORKER_CONCURRENCY", 1)
	v.SetDefault("QUEUE_WORKER_RETRIES", 0)
	v.SetDefault("QUEUE_RESULT_TTL", "1h")
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
