// Package config provides the generator configuration, merged from the
// global config file, the project-local config file and command line
// flags, in ascending precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	xdgbasedir "github.com/zchee/go-xdgbasedir"

	"github.com/yonagi/bridgen/logger"
	"github.com/yonagi/bridgen/meta"
)

const localConfigName = ".bridgen.toml"

// Schema holds where the schema files live and which file anchors the set.
type Schema struct {
	Dir     string `mapstructure:"dir" toml:"dir"`
	Primary string `mapstructure:"primary" toml:"primary"`
}

// Output controls the generated artifacts.
type Output struct {
	Dir     string `mapstructure:"dir" toml:"dir"`
	Package string `mapstructure:"package" toml:"package"`
	Tag     string `mapstructure:"tag" toml:"tag"`
	Runtime string `mapstructure:"runtime" toml:"runtime"`
}

type Meta struct {
	ColoredOutput bool `mapstructure:"coloredOutput" toml:"coloredOutput"`
	Verbose       bool `mapstructure:"verbose" toml:"verbose"`
}

type Config struct {
	Schema *Schema `mapstructure:"schema" toml:"schema"`
	Output *Output `mapstructure:"output" toml:"output"`
	Meta   *Meta   `mapstructure:"meta" toml:"meta"`
}

// ValidationError is returned when the merged config violates a
// constraint no flag or config file may break.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the invariants generation relies on. The tag turns into
// channel names and registry keys, so its shape is restricted.
func (c *Config) Validate() error {
	var result error
	invalidCases := []struct {
		name string
		cond bool
	}{
		{"schema.primary is required", c.Schema.Primary == ""},
		{"output.tag must not be empty", c.Output.Tag == ""},
		{"output.tag must not contain ':' or whitespace", strings.ContainsAny(c.Output.Tag, ": \t")},
		{"output.package must be a valid Go package name", !validPackageName(c.Output.Package)},
	}
	for _, invalid := range invalidCases {
		if invalid.cond {
			result = multierror.Append(result, errors.New(invalid.name))
		}
	}
	if result != nil {
		return &ValidationError{Err: result}
	}
	return nil
}

// Get loads and merges the config sources. fs may be nil when no command
// line flags should participate.
func Get(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	if err := readGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := readLocalConfig(v); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal the config")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema.dir", ".")
	v.SetDefault("schema.primary", "")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.package", "")
	v.SetDefault("output.tag", "grpc")
	v.SetDefault("output.runtime", "")
	v.SetDefault("meta.coloredOutput", true)
	v.SetDefault("meta.verbose", false)
}

func globalConfigPath() string {
	return filepath.Join(xdgbasedir.ConfigHome(), meta.AppName, "config.toml")
}

func readGlobalConfig(v *viper.Viper) error {
	path := globalConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "failed to stat the global config file '%s'", path)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read the global config file '%s'", path)
	}
	logger.Printf("loaded the global config file: %s", path)
	return nil
}

func readLocalConfig(v *viper.Viper) error {
	path, found := lookupLocalConfigPath()
	if !found {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read the local config file '%s'", path)
	}
	logger.Printf("loaded the local config file: %s", path)
	return nil
}

// lookupLocalConfigPath walks up from the working directory so the
// command also works from a project subdirectory.
func lookupLocalConfigPath() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, localConfigName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"schema.dir":     "dir",
		"schema.primary": "primary",
		"output.dir":     "out",
		"output.package": "package",
		"output.tag":     "tag",
		"output.runtime": "runtime",
		"meta.verbose":   "verbose",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind the flag '--%s'", name)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	dir, err := homedir.Expand(c.Schema.Dir)
	if err != nil {
		return errors.Wrap(err, "failed to expand the schema directory")
	}
	c.Schema.Dir = dir

	out, err := homedir.Expand(c.Output.Dir)
	if err != nil {
		return errors.Wrap(err, "failed to expand the output directory")
	}
	c.Output.Dir = out

	if c.Output.Package == "" {
		c.Output.Package = derivePackageName(c.Output.Dir)
	}
	return nil
}

// derivePackageName builds a usable package name from the output
// directory when none is configured.
func derivePackageName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	var b strings.Builder
	for _, r := range strings.ToLower(filepath.Base(abs)) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				continue
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "bridged"
	}
	return b.String()
}

func validPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
