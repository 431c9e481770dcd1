package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration persisted as TOML.
type Config struct {
	RPCAddress      string   `toml:"RPCAddress"`
	MetricsAddress  string   `toml:"MetricsAddress"`
	DataDir         string   `toml:"DataDir"`
	Environment     string   `toml:"Environment"`
	RPCAuthToken    string   `toml:"RPCAuthToken,omitempty"`
	RPCRateLimit    float64  `toml:"RPCRateLimit"`
	RPCRateBurst    int      `toml:"RPCRateBurst"`
	CollateralMints []string `toml:"CollateralMints"`
	Oracle          Oracle   `toml:"Oracle"`
}

// Oracle configures the price feeds consulted on mint and burn.
type Oracle struct {
	// Priority orders feed names from most to least trusted.
	Priority []string `toml:"Priority"`
	// MaxAgeSeconds bounds quote staleness; older quotes are skipped.
	MaxAgeSeconds int64  `toml:"MaxAgeSeconds"`
	Feeds         []Feed `toml:"Feeds"`
}

// Feed names one HTTP price source.
type Feed struct {
	Name     string `toml:"Name"`
	Endpoint string `toml:"Endpoint"`
	APIKey   string `toml:"APIKey,omitempty"`
}

// MaxAge returns the staleness window as a duration.
func (o Oracle) MaxAge() time.Duration {
	if o.MaxAgeSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(o.MaxAgeSeconds) * time.Second
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = ":8080"
	}
	if strings.TrimSpace(c.MetricsAddress) == "" {
		c.MetricsAddress = ":9090"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./synth-data"
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if c.RPCRateLimit <= 0 {
		c.RPCRateLimit = 20
	}
	if c.RPCRateBurst <= 0 {
		c.RPCRateBurst = 40
	}
	if c.CollateralMints == nil {
		c.CollateralMints = []string{}
	}
	if c.Oracle.MaxAgeSeconds <= 0 {
		c.Oracle.MaxAgeSeconds = 60
	}
}

// Validate checks ranges and cross-field consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required")
	}
	seen := make(map[string]struct{}, len(c.CollateralMints))
	for _, mint := range c.CollateralMints {
		normalized := strings.ToUpper(strings.TrimSpace(mint))
		if normalized == "" {
			return fmt.Errorf("config: empty collateral mint entry")
		}
		if _, ok := seen[normalized]; ok {
			return fmt.Errorf("config: duplicate collateral mint %s", normalized)
		}
		seen[normalized] = struct{}{}
	}
	names := make(map[string]struct{}, len(c.Oracle.Feeds))
	for _, feed := range c.Oracle.Feeds {
		name := strings.TrimSpace(feed.Name)
		if name == "" {
			return fmt.Errorf("config: oracle feed name required")
		}
		if strings.TrimSpace(feed.Endpoint) == "" {
			return fmt.Errorf("config: oracle feed %s needs an endpoint", name)
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("config: duplicate oracle feed %s", name)
		}
		names[name] = struct{}{}
	}
	for _, name := range c.Oracle.Priority {
		if _, ok := names[strings.TrimSpace(name)]; !ok {
			return fmt.Errorf("config: oracle priority names unknown feed %s", name)
		}
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:      ":8080",
		MetricsAddress:  ":9090",
		DataDir:         "./synth-data",
		Environment:     "local",
		RPCRateLimit:    20,
		RPCRateBurst:    40,
		CollateralMints: []string{"USDC"},
		Oracle: Oracle{
			Priority:      []string{},
			MaxAgeSeconds: 60,
			Feeds:         []Feed{},
		},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
