package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faucetdb/modelgen/internal/connector"
)

// Config represents the top-level modelgen configuration file.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Databases DatabasesConfig `yaml:"databases"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig describes the server whose databases are introspected.
type SourceConfig struct {
	Driver         string     `yaml:"driver"`
	DSN            string     `yaml:"dsn"`
	Schema         string     `yaml:"schema"`
	PrivateKeyPath string     `yaml:"private_key_path"`
	Pool           PoolConfig `yaml:"pool"`
}

// PoolConfig controls the connection pool opened for each database.
type PoolConfig struct {
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

// DatabasesConfig selects which enumerated databases are processed.
// Patterns use path.Match syntax.
type DatabasesConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// OutputConfig controls where model files are written and how they look.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Namespace string `yaml:"namespace"`
	BaseClass string `yaml:"base_class"`
	Extension string `yaml:"extension"`
	Template  string `yaml:"template"`
	Author    string `yaml:"author"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses a YAML configuration file on top of Default().
// Environment variables referenced as ${VAR_NAME} in the file are expanded
// before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables: ${VAR_NAME}
	content := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-filled with the defaults used when no file
// or override sets a value.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Driver: "mysql",
			DSN:    "root:@tcp(127.0.0.1:3306)/",
			Pool: PoolConfig{
				MaxOpenConns:    1,
				ConnMaxLifetime: "5m",
			},
		},
		Databases: DatabasesConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Output: OutputConfig{
			Dir:       "Models",
			Namespace: `App\Models`,
			BaseClass: `Illuminate\Database\Eloquent\Model`,
			Extension: "php",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConnectionConfig returns the base connection settings for the source
// server. Database is left empty; the run fills it per database.
func (c *Config) ConnectionConfig() (connector.ConnectionConfig, error) {
	cc := connector.ConnectionConfig{
		Driver:         c.Source.Driver,
		DSN:            c.Source.DSN,
		SchemaName:     c.Source.Schema,
		MaxOpenConns:   c.Source.Pool.MaxOpenConns,
		MaxIdleConns:   c.Source.Pool.MaxIdleConns,
		PrivateKeyPath: c.Source.PrivateKeyPath,
	}
	if c.Source.Pool.ConnMaxLifetime != "" {
		d, err := time.ParseDuration(c.Source.Pool.ConnMaxLifetime)
		if err != nil {
			return cc, fmt.Errorf("source.pool.conn_max_lifetime: %w", err)
		}
		cc.ConnMaxLifetime = d
	}
	if c.Source.Pool.ConnMaxIdleTime != "" {
		d, err := time.ParseDuration(c.Source.Pool.ConnMaxIdleTime)
		if err != nil {
			return cc, fmt.Errorf("source.pool.conn_max_idle_time: %w", err)
		}
		cc.ConnMaxIdleTime = d
	}
	return cc, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := Default().Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(defaultHeader), data...), 0644)
}

const defaultHeader = `# modelgen configuration
#
# Values may reference environment variables as ${VAR_NAME}. Every key can
# also be overridden with MODELGEN_<SECTION>_<KEY>, e.g. MODELGEN_SOURCE_DSN.

`
