// Package config loads CLI settings from jotter.yaml and JOTTER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/validation"
)

// FileName is the config file looked up in the store root and the user
// config directory.
const FileName = "jotter.yaml"

// EnvPrefix namespaces environment overrides, e.g. JOTTER_STORE_ADAPTER.
const EnvPrefix = "JOTTER"

// Settings is the resolved CLI configuration.
type Settings struct {
	Store struct {
		Path        string        `mapstructure:"path"`
		Adapter     string        `mapstructure:"adapter"`
		SystemDir   string        `mapstructure:"system_dir"`
		BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	} `mapstructure:"store"`

	Search struct {
		Mode string `mapstructure:"mode"`
		// Debounce is advice for interactive front-ends; the service ignores it.
		Debounce time.Duration `mapstructure:"debounce"`
		Limit    int           `mapstructure:"limit"`
	} `mapstructure:"search"`

	Limits validation.Limits `mapstructure:"limits"`

	Export struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"export"`

	// ConfigFile is the file actually read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	limits := validation.DefaultLimits()

	v.SetDefault("store.path", "")
	v.SetDefault("store.adapter", platform.AdapterSQLite)
	v.SetDefault("store.system_dir", ".jotter")
	v.SetDefault("store.busy_timeout", 5*time.Second)

	v.SetDefault("search.mode", string(core.MatchTitleContent))
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("search.limit", 0)

	v.SetDefault("limits.title_max", limits.TitleMax)
	v.SetDefault("limits.content_max", limits.ContentMax)
	v.SetDefault("limits.tag_max", limits.TagMax)
	v.SetDefault("limits.max_tags", limits.MaxTags)

	v.SetDefault("export.format", string(core.FormatJSON))
}

// Load reads the settings. An explicit configFile must exist; otherwise
// jotter.yaml is searched in the given directories and a missing file is
// not an error. Environment variables win over the file.
func Load(configFile string, searchDirs ...string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "jotter"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the service cannot honor.
func (s *Settings) Validate() error {
	switch s.Store.Adapter {
	case platform.AdapterSQLite, platform.AdapterFS:
	default:
		return fmt.Errorf("store.adapter: unknown adapter %q", s.Store.Adapter)
	}
	switch core.MatchMode(strings.ToLower(s.Search.Mode)) {
	case core.MatchTitleContent, core.MatchIncludeTags, "tags":
	default:
		return fmt.Errorf("search.mode: unknown mode %q", s.Search.Mode)
	}
	if _, err := core.ParseFormat(s.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if s.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if s.Search.Limit < 0 {
		return fmt.Errorf("search.limit must not be negative")
	}
	l := s.Limits
	if l.TitleMax < 0 || l.ContentMax < 0 || l.TagMax < 0 || l.MaxTags < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

// MatchMode returns the configured search mode.
func (s *Settings) MatchMode() core.MatchMode {
	return core.ParseMatchMode(s.Search.Mode)
}

// Options translates the settings into library options.
func (s *Settings) Options() []platform.Option {
	return []platform.Option{
		platform.WithAdapter(s.Store.Adapter),
		platform.WithSystemDir(s.Store.SystemDir),
		platform.WithBusyTimeout(s.Store.BusyTimeout),
		platform.WithLimits(s.Limits),
	}
}
