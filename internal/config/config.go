package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"chatsentry/detector"
)

type Config struct {
	LogLevel        string         `yaml:"log_level"`
	DatabasePath    string         `yaml:"database_path"`
	RegDateURL      string         `yaml:"reg_date_url"`
	RetentionDays   int            `yaml:"retention_days"`
	BatchSize       int            `yaml:"batch_size"`
	SlowModeDelayMS int64          `yaml:"slow_mode_delay_ms"`
	Detector        DetectorConfig `yaml:"detector"`
}

type DetectorConfig struct {
	DelayThresholdMS                int64   `yaml:"delay_threshold_ms"`
	DelayMinMessageCount            int     `yaml:"delay_min_message_count"`
	SimilarityMessageCountThreshold int     `yaml:"similarity_message_count_threshold"`
	SimilarityMinMessageLength      int     `yaml:"similarity_min_message_length"`
	AvgLengthThreshold              float64 `yaml:"avg_length_threshold"`
	AvgLengthMessageCount           int     `yaml:"avg_length_message_count"`
	MinRegistrationDate             string  `yaml:"min_registration_date"`
	FallbackRegistrationDate        string  `yaml:"fallback_registration_date"`
	MaxTrackedMessages              int     `yaml:"max_tracked_messages"`
	CacheSize                       int     `yaml:"cache_size"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:      "info",
		DatabasePath:  "",
		RetentionDays: 14,
		BatchSize:     500,
		Detector: DetectorConfig{
			DelayThresholdMS:                2000,
			DelayMinMessageCount:            5,
			SimilarityMessageCountThreshold: 3,
			SimilarityMinMessageLength:      10,
			AvgLengthThreshold:              200,
			AvgLengthMessageCount:           5,
			MinRegistrationDate:             "2024-01-01",
			FallbackRegistrationDate:        "2020-10-01",
			MaxTrackedMessages:              64,
			CacheSize:                       4096,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.RetentionDays < 0 {
		return Config{}, fmt.Errorf("retention_days must not be negative, got %d", cfg.RetentionDays)
	}
	if cfg.SlowModeDelayMS < 0 {
		return Config{}, fmt.Errorf("slow_mode_delay_ms must not be negative, got %d", cfg.SlowModeDelayMS)
	}
	return cfg, nil
}

// Params assembles detector parameters from the configuration. Threshold
// validation itself happens in detector.New.
func (c DetectorConfig) Params() (detector.Params, error) {
	minDate, err := parseDate(c.MinRegistrationDate)
	if err != nil {
		return detector.Params{}, fmt.Errorf("min_registration_date: %w", err)
	}
	fallback, err := parseDate(c.FallbackRegistrationDate)
	if err != nil {
		return detector.Params{}, fmt.Errorf("fallback_registration_date: %w", err)
	}
	return detector.Params{
		DelayThresholdMS:                c.DelayThresholdMS,
		DelayMinMessageCount:            c.DelayMinMessageCount,
		SimilarityMessageCountThreshold: c.SimilarityMessageCountThreshold,
		SimilarityMinMessageLength:      c.SimilarityMinMessageLength,
		AvgLengthThreshold:              c.AvgLengthThreshold,
		AvgLengthMessageCount:           c.AvgLengthMessageCount,
		MinRegistrationDate:             minDate,
		FallbackRegDate:                 fallback,
		MaxTrackedMessages:              c.MaxTrackedMessages,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	return date, nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.RegDateURL = envString("REG_DATE_URL", cfg.RegDateURL)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.BatchSize = envInt("BATCH_SIZE", cfg.BatchSize)
	cfg.SlowModeDelayMS = envInt64("SLOW_MODE_DELAY_MS", cfg.SlowModeDelayMS)
	cfg.Detector.DelayThresholdMS = envInt64("DELAY_THRESHOLD_MS", cfg.Detector.DelayThresholdMS)
	cfg.Detector.DelayMinMessageCount = envInt("DELAY_MIN_MESSAGE_COUNT", cfg.Detector.DelayMinMessageCount)
	cfg.Detector.SimilarityMessageCountThreshold = envInt("SIMILARITY_MESSAGE_COUNT_THRESHOLD", cfg.Detector.SimilarityMessageCountThreshold)
	cfg.Detector.SimilarityMinMessageLength = envInt("SIMILARITY_MIN_MESSAGE_LENGTH", cfg.Detector.SimilarityMinMessageLength)
	cfg.Detector.AvgLengthThreshold = envFloat("AVG_LENGTH_THRESHOLD", cfg.Detector.AvgLengthThreshold)
	cfg.Detector.AvgLengthMessageCount = envInt("AVG_LENGTH_MESSAGE_COUNT", cfg.Detector.AvgLengthMessageCount)
	cfg.Detector.MinRegistrationDate = envString("MIN_REGISTRATION_DATE", cfg.Detector.MinRegistrationDate)
	cfg.Detector.FallbackRegistrationDate = envString("FALLBACK_REGISTRATION_DATE", cfg.Detector.FallbackRegistrationDate)
	cfg.Detector.MaxTrackedMessages = envInt("MAX_TRACKED_MESSAGES", cfg.Detector.MaxTrackedMessages)
	cfg.Detector.CacheSize = envInt("REG_DATE_CACHE_SIZE", cfg.Detector.CacheSize)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
