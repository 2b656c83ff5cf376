package config

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json", "auto"}
)

// Validate reports every problem with the config, joined into one error.
// Each problem wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Source.Driver == "" {
		bad("source.driver is required")
	}
	if c.Source.DSN == "" {
		bad("source.dsn is required")
	}
	if c.Source.Pool.MaxOpenConns < 0 || c.Source.Pool.MaxIdleConns < 0 {
		bad("source.pool connection limits must not be negative")
	}
	if v := c.Source.Pool.ConnMaxLifetime; v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			bad("source.pool.conn_max_lifetime %q is not a duration", v)
		}
	}
	if v := c.Source.Pool.ConnMaxIdleTime; v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			bad("source.pool.conn_max_idle_time %q is not a duration", v)
		}
	}

	for _, p := range append(slices.Clone(c.Databases.Include), c.Databases.Exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			bad("database pattern %q: %v", p, err)
		}
	}

	if c.Output.Dir == "" {
		bad("output.dir is required")
	}
	if strings.Trim(c.Output.Extension, ".") == "" {
		bad("output.extension is required")
	}
	if c.Output.BaseClass == "" {
		bad("output.base_class is required")
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		bad("logging.level %q must be one of %s", c.Logging.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		bad("logging.format %q must be one of %s", c.Logging.Format, strings.Join(logFormats, ", "))
	}

	return errors.Join(errs...)
}

// Keys lists the dotted keys accepted by Set, in file order.
var Keys = []string{
	"source.driver",
	"source.dsn",
	"source.schema",
	"source.private_key_path",
	"source.pool.max_open_conns",
	"source.pool.max_idle_conns",
	"source.pool.conn_max_lifetime",
	"source.pool.conn_max_idle_time",
	"databases.include",
	"databases.exclude",
	"output.dir",
	"output.namespace",
	"output.base_class",
	"output.extension",
	"output.template",
	"output.author",
	"logging.level",
	"logging.format",
}

// Set assigns value to the field named by a dotted key. List keys take a
// comma-separated value.
func (c *Config) Set(key, value string) error {
	if s := c.stringField(key); s != nil {
		*s = value
		return nil
	}

	switch key {
	case "source.pool.max_open_conns", "source.pool.max_idle_conns":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		}
		if key == "source.pool.max_open_conns" {
			c.Source.Pool.MaxOpenConns = n
		} else {
			c.Source.Pool.MaxIdleConns = n
		}
	case "databases.include":
		c.Databases.Include = splitList(value)
	case "databases.exclude":
		c.Databases.Exclude = splitList(value)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	return nil
}

func (c *Config) stringField(key string) *string {
	switch key {
	case "source.driver":
		return &c.Source.Driver
	case "source.dsn":
		return &c.Source.DSN
	case "source.schema":
		return &c.Source.Schema
	case "source.private_key_path":
		return &c.Source.PrivateKeyPath
	case "source.pool.conn_max_lifetime":
		return &c.Source.Pool.ConnMaxLifetime
	case "source.pool.conn_max_idle_time":
		return &c.Source.Pool.ConnMaxIdleTime
	case "output.dir":
		return &c.Output.Dir
	case "output.namespace":
		return &c.Output.Namespace
	case "output.base_class":
		return &c.Output.BaseClass
	case "output.extension":
		return &c.Output.Extension
	case "output.template":
		return &c.Output.Template
	case "output.author":
		return &c.Output.Author
	case "logging.level":
		return &c.Logging.Level
	case "logging.format":
		return &c.Logging.Format
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
