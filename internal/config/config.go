// Package config loads the immutable run configuration: the namespace root,
// the control exclusion set and the event capitalization table. Built-in
// defaults are embedded and may be extended or overridden by config files
// and CONTROLAPIGEN_* environment variables.
package config

import (
	"bytes"
	_ "embed"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

const EnvPrefix = "CONTROLAPIGEN"

// Keys understood in config files.
const (
	KeyRoot            = "root"
	KeyElementSuffix   = "element_suffix"
	KeyVariable        = "variable"
	KeyExclude         = "exclude"
	KeyEvents          = "events"
	KeyAllowUnresolved = "allow_unresolved"
)

// Config is the run configuration. Values returned by Load never share
// backing storage with the viper instance they came from.
type Config struct {
	Root            string            `mapstructure:"root"`
	ElementSuffix   string            `mapstructure:"element_suffix"`
	Variable        string            `mapstructure:"variable"`
	Exclude         []string          `mapstructure:"exclude"`
	Events          map[string]string `mapstructure:"events"`
	AllowUnresolved bool              `mapstructure:"allow_unresolved"`
}

// Prepare seeds v with the embedded defaults, then merges files in order
// (last file wins) and enables environment overrides.
func Prepare(v *viper.Viper, l *slog.Logger, files ...string) error {
	if l == nil {
		l = slog.Default()
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return errors.Wrap(err, "read embedded defaults")
	}
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
		if err = v.MergeConfig(bytes.NewReader(b)); err != nil {
			return errors.Wrapf(err, "merge config %s", file)
		}
		l.With("file", file).Info("merged config file")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	// AutomaticEnv is only consulted by Get*, not by Unmarshal.
	c.Root = v.GetString(KeyRoot)
	c.ElementSuffix = v.GetString(KeyElementSuffix)
	c.Variable = v.GetString(KeyVariable)
	c.AllowUnresolved = v.GetBool(KeyAllowUnresolved)
	return c.Clone(), nil
}

// Default returns the embedded configuration.
func Default() *Config {
	v := viper.New()
	if err := Prepare(v, nil); err != nil {
		panic(err)
	}
	c, err := Load(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Exclude = append([]string(nil), c.Exclude...)
	out.Events = make(map[string]string, len(c.Events))
	for k, v := range c.Events {
		out.Events[strings.ToLower(k)] = v
	}
	return &out
}
