package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// Facet override modes accepted by DC_FACET_OVERRIDE besides a file path.
const (
	FacetOverrideDefault = "default"
	FacetOverrideNone    = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	APIRoot    string
	APITimeout time.Duration

	// FacetOverride is nil when the built-in default override applies and
	// empty when overrides are disabled.
	FacetOverride domain.FacetOverride

	// Query run by the sync service.
	Variables          []string
	Entities           []string
	ParentEntity       string
	ChildType          string
	PerCapitaVariables []string
	Date               string
	SyncInterval       time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parsePositiveDuration("DC_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	syncInterval, err := parsePositiveDuration("SYNC_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	override, err := LoadFacetOverride(os.Getenv("DC_FACET_OVERRIDE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIRoot:            sharedcfg.EnvOrDefault("DC_API_ROOT", "https://datacommons.org"),
		APITimeout:         apiTimeout,
		FacetOverride:      override,
		Variables:          splitList(os.Getenv("DC_VARIABLES")),
		Entities:           splitList(os.Getenv("DC_ENTITIES")),
		ParentEntity:       strings.TrimSpace(os.Getenv("DC_PARENT_ENTITY")),
		ChildType:          strings.TrimSpace(os.Getenv("DC_CHILD_TYPE")),
		PerCapitaVariables: splitList(os.Getenv("DC_PER_CAPITA_VARIABLES")),
		Date:               strings.TrimSpace(os.Getenv("DC_DATE")),
		SyncInterval:       syncInterval,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "datacommons-rows"),
		BatchSize:          batchSize,
	}

	if (cfg.ParentEntity == "") != (cfg.ChildType == "") {
		return nil, errors.New("DC_PARENT_ENTITY and DC_CHILD_TYPE must be set together")
	}

	return cfg, nil
}

// ValidateSync checks the settings the sync service needs beyond Load's defaults.
func (c *Config) ValidateSync() error {
	if len(c.Variables) == 0 {
		return errors.New("DC_VARIABLES is required")
	}
	if len(c.Entities) == 0 && c.ParentEntity == "" {
		return errors.New("DC_ENTITIES or DC_PARENT_ENTITY is required")
	}
	if len(c.Entities) > 0 && c.ParentEntity != "" {
		return errors.New("DC_ENTITIES and DC_PARENT_ENTITY are mutually exclusive")
	}
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	return nil
}

// Selector returns the entity selector described by the configuration.
func (c *Config) Selector() domain.Selector {
	if c.ParentEntity != "" {
		return domain.WithinSelector(c.ParentEntity, c.ChildType)
	}
	return domain.EntitiesSelector(c.Entities...)
}

// LoadFacetOverride resolves a DC_FACET_OVERRIDE value. Empty or "default"
// keeps the built-in override, "none" disables overrides, and anything else
// is read as a YAML (or JSON) file mapping unit codes to facet fields.
func LoadFacetOverride(value string) (domain.FacetOverride, error) {
	value = strings.TrimSpace(value)
	switch value {
	case "", FacetOverrideDefault:
		return nil, nil
	case FacetOverrideNone:
		return domain.FacetOverride{}, nil
	}

	data, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("read DC_FACET_OVERRIDE file: %w", err)
	}
	override := domain.FacetOverride{}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse DC_FACET_OVERRIDE file: %w", err)
	}
	return override, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
