package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	LogFile          string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration
	EvalWorkers        int

	// Trigger thresholds.
	CeilingMinFt    int
	VisibilityMinSM float64
	ShortHopMinutes int
	HighWindEnabled bool
	HighWindKt      int

	// TAF segment cache.
	SegmentCacheSize int
	SegmentCacheTTL  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "flight-wx-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flight-wx-triggers"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "flight-wx-triggers"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:            sharedcfg.EnvOrDefault("LOG_FILE", ""),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.EvalWorkers, err = positiveInt("EVAL_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.CeilingMinFt, err = positiveInt("CEILING_MIN_FT", 2000); err != nil {
		return nil, err
	}
	if cfg.VisibilityMinSM, err = positiveFloat("VISIBILITY_MIN_SM", 3); err != nil {
		return nil, err
	}
	if cfg.ShortHopMinutes, err = positiveInt("SHORT_HOP_MINUTES", 60); err != nil {
		return nil, err
	}
	if cfg.HighWindEnabled, err = boolean("HIGH_WIND_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.HighWindKt, err = positiveInt("HIGH_WIND_KT", 40); err != nil {
		return nil, err
	}
	if cfg.SegmentCacheSize, err = positiveInt("SEGMENT_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.SegmentCacheTTL, err = positiveDuration("SEGMENT_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func positiveFloat(key string, def float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.FormatFloat(def, 'f', -1, 64))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", key, s)
	}
	return v, nil
}

func positiveDuration(key string, def time.Duration) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def.String())
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, s)
	}
	return d, nil
}

func boolean(key string, def bool) (bool, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.FormatBool(def))
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", key, s)
	}
	return b, nil
}
