package cfg

import (
	"flag"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// HTTPConfiguration controls the operation API listener
type HTTPConfiguration struct {
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
	AuthToken   string `toml:"auth_token"` // empty = auth disabled
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled bool `toml:"enabled"`
}

// AccessConfiguration restricts which tables the introspection
// operations may see. Patterns are glob expressions matched against
// table names; the default single "*" pattern admits everything.
type AccessConfiguration struct {
	TablePatterns []string `toml:"table_patterns"`
}

// CacheConfiguration controls the table schema cache
type CacheConfiguration struct {
	SchemaEntries int `toml:"schema_entries"`
}

// Configuration is the main configuration structure
type Configuration struct {
	InstanceID uint64 `toml:"instance_id"`

	HTTP       HTTPConfiguration       `toml:"http"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
	Access     AccessConfiguration     `toml:"access"`
	Cache      CacheConfiguration      `toml:"cache"`
}

// Command line flags
var (
	ConfigPathFlag = flag.String("config", "config.toml", "Path to configuration file")
	PortFlag       = flag.Int("port", 0, "HTTP port (overrides config)")
	VerboseFlag    = flag.Bool("verbose", false, "Enable debug logging (overrides config)")
)

// Default configuration
var Config = &Configuration{
	InstanceID: 0, // Auto-generate

	HTTP: HTTPConfiguration{
		BindAddress: "0.0.0.0",
		Port:        8080,
	},

	Logging: LoggingConfiguration{
		Verbose: false,
		Format:  "console",
	},

	Prometheus: PrometheusConfiguration{
		Enabled: true,
	},

	Access: AccessConfiguration{
		TablePatterns: []string{"*"},
	},

	Cache: CacheConfiguration{
		SchemaEntries: 128,
	},
}

// Load loads configuration from file and applies CLI overrides
func Load(configPath string) error {
	// Load from file if it exists
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("Loading configuration")
			if _, err := toml.DecodeFile(configPath, Config); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Debug().Str("path", configPath).Msg("Config file not found, using defaults")
		}
	}

	// Apply CLI overrides
	if *PortFlag != 0 {
		Config.HTTP.Port = *PortFlag
	}
	if *VerboseFlag {
		Config.Logging.Verbose = true
	}

	// Auto-generate instance ID if not set
	if Config.InstanceID == 0 {
		var err error
		Config.InstanceID, err = generateInstanceID()
		if err != nil {
			return fmt.Errorf("failed to generate instance ID: %w", err)
		}
		log.Debug().Uint64("instance_id", Config.InstanceID).Msg("Auto-generated instance ID")
	}

	return nil
}

// generateInstanceID creates a stable instance ID based on machine ID
func generateInstanceID() (uint64, error) {
	id, err := machineid.ProtectedID("burrow")
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64(), nil
}

// Validate checks configuration for errors
func Validate() error {
	if Config.HTTP.Port < 1 || Config.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", Config.HTTP.Port)
	}

	if Config.Logging.Format != "console" && Config.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", Config.Logging.Format)
	}

	if len(Config.Access.TablePatterns) == 0 {
		return fmt.Errorf("access.table_patterns must not be empty")
	}
	for _, p := range Config.Access.TablePatterns {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid table pattern %q: %w", p, err)
		}
	}

	if Config.Cache.SchemaEntries < 1 {
		return fmt.Errorf("cache.schema_entries must be >= 1")
	}

	return nil
}

// TableGlobs compiles the configured access patterns. Call after
// Validate so compilation cannot fail.
func TableGlobs() []glob.Glob {
	globs := make([]glob.Glob, 0, len(Config.Access.TablePatterns))
	for _, p := range Config.Access.TablePatterns {
		globs = append(globs, glob.MustCompile(p))
	}
	return globs
}

// IsAuthEnabled reports whether API authentication is configured
func IsAuthEnabled() bool {
	return Config.HTTP.AuthToken != ""
}

// AuthToken returns the configured API token
func AuthToken() string {
	return Config.HTTP.AuthToken
}
