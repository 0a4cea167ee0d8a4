package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veranohq/guestsearch/internal/domain"
)

// Config holds the guestsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings. Dimensions is always the
// full Matryoshka tier; the smaller tiers are derived by truncation, never
// requested from the provider.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
}

// CacheConfig holds query-embedding cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// RetrievalConfig holds per-domain search parameters.
type RetrievalConfig struct {
	Accommodation AccommodationConfig `yaml:"accommodation"`
	HotelGeneral  DomainConfig        `yaml:"hotel_general"`
	UnitManual    DomainConfig        `yaml:"unit_manual"`
	Tourism       DomainConfig        `yaml:"tourism"`
}

// AccommodationConfig covers the one domain that spans two tables indexed at
// different tiers: the public catalog and the guest's private unit content.
type AccommodationConfig struct {
	PublicTier  string  `yaml:"public_tier"`
	PrivateTier string  `yaml:"private_tier"`
	Threshold   float64 `yaml:"similarity_threshold"`
	TopK        int     `yaml:"top_k"`
}

// DomainConfig pins a knowledge domain to an embedding tier, a similarity
// threshold, and a result limit. The tier is explicit configuration: the
// dimension searched comes from the tier name, never from how a storage
// column happens to be labeled.
type DomainConfig struct {
	Tier      string  `yaml:"tier"` // balanced, standard, full
	Threshold float64 `yaml:"similarity_threshold"`
	TopK      int     `yaml:"top_k"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. Domain defaults
// reflect observed retrieval behavior: tourism recall benefits most from the
// full tier, the public accommodation catalog is indexed at the balanced tier.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "guestsearch:"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = domain.DimFull
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}

	if c.Retrieval.Accommodation.PublicTier == "" {
		c.Retrieval.Accommodation.PublicTier = string(domain.TierBalanced)
	}
	if c.Retrieval.Accommodation.PrivateTier == "" {
		c.Retrieval.Accommodation.PrivateTier = string(domain.TierStandard)
	}
	if c.Retrieval.Accommodation.Threshold <= 0 {
		c.Retrieval.Accommodation.Threshold = 0.15
	}
	if c.Retrieval.Accommodation.TopK <= 0 {
		c.Retrieval.Accommodation.TopK = 10
	}
	applyDomainDefaults(&c.Retrieval.HotelGeneral, string(domain.TierStandard), 0.30, 5)
	applyDomainDefaults(&c.Retrieval.UnitManual, string(domain.TierStandard), 0.25, 5)
	applyDomainDefaults(&c.Retrieval.Tourism, string(domain.TierFull), 0.15, 10)
}

func applyDomainDefaults(d *DomainConfig, tier string, threshold float64, topK int) {
	if d.Tier == "" {
		d.Tier = tier
	}
	if d.Threshold <= 0 {
		d.Threshold = threshold
	}
	if d.TopK <= 0 {
		d.TopK = topK
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Dimensions != domain.DimFull {
		return fmt.Errorf(
			"embedding.dimensions must be %d (smaller tiers are derived by truncation), got %d",
			domain.DimFull, c.Embedding.Dimensions,
		)
	}
	acc := c.Retrieval.Accommodation
	if _, err := domain.Tier(acc.PublicTier).Dim(); err != nil {
		return fmt.Errorf("retrieval.accommodation.public_tier: %w", err)
	}
	if _, err := domain.Tier(acc.PrivateTier).Dim(); err != nil {
		return fmt.Errorf("retrieval.accommodation.private_tier: %w", err)
	}
	if acc.Threshold < 0 || acc.Threshold > 1 {
		return fmt.Errorf("retrieval.accommodation.similarity_threshold must be in [0, 1], got %g", acc.Threshold)
	}
	domains := map[string]DomainConfig{
		"hotel_general": c.Retrieval.HotelGeneral,
		"unit_manual":   c.Retrieval.UnitManual,
		"tourism":       c.Retrieval.Tourism,
	}
	for name, d := range domains {
		if _, err := domain.Tier(d.Tier).Dim(); err != nil {
			return fmt.Errorf("retrieval.%s.tier: %w", name, err)
		}
		if d.Threshold < 0 || d.Threshold > 1 {
			return fmt.Errorf("retrieval.%s.similarity_threshold must be in [0, 1], got %g", name, d.Threshold)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
