package config

import (
	"io/fs"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "SUBTRACK"

// Customization is the user's single-style subtitle override.
type Customization struct {
	Enabled      bool    `mapstructure:"enabled"`
	FontName     string  `mapstructure:"font_name"`
	FontSize     int     `mapstructure:"font_size"`
	PrimaryColor string  `mapstructure:"primary_color"`
	OutlineColor string  `mapstructure:"outline_color"`
	ShadowColor  string  `mapstructure:"shadow_color"`
	Opacity      float64 `mapstructure:"opacity"`
	OutlineWidth float64 `mapstructure:"outline_width"`
	ShadowDepth  float64 `mapstructure:"shadow_depth"`
}

// Settings is the subtitle slice of the player settings.
type Settings struct {
	// seconds, positive shows subtitles later
	SubtitleDelay float64       `mapstructure:"subtitle_delay"`
	Customization Customization `mapstructure:"customization"`
	// ordered, comma separated
	PreferredLanguage string `mapstructure:"preferred_language"`
	// comma separated label substrings
	Blacklist string `mapstructure:"blacklist"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Customization: Customization{
			FontSize:     52,
			PrimaryColor: "FFFFFF",
			OutlineColor: "000000",
			ShadowColor:  "000000",
			Opacity:      1,
			OutlineWidth: 2,
			ShadowDepth:  1,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("subtitle_delay", d.SubtitleDelay)
	v.SetDefault("preferred_language", d.PreferredLanguage)
	v.SetDefault("blacklist", d.Blacklist)

	v.SetDefault("customization.enabled", d.Customization.Enabled)
	v.SetDefault("customization.font_name", d.Customization.FontName)
	v.SetDefault("customization.font_size", d.Customization.FontSize)
	v.SetDefault("customization.primary_color", d.Customization.PrimaryColor)
	v.SetDefault("customization.outline_color", d.Customization.OutlineColor)
	v.SetDefault("customization.shadow_color", d.Customization.ShadowColor)
	v.SetDefault("customization.opacity", d.Customization.Opacity)
	v.SetDefault("customization.outline_width", d.Customization.OutlineWidth)
	v.SetDefault("customization.shadow_depth", d.Customization.ShadowDepth)
}

// Load reads settings from a YAML file, then applies SUBTRACK_* environment
// overrides. A missing file or empty path yields the defaults.
func Load(path string) (Settings, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "unmarshal config")
	}
	return s, nil
}

// Store writes settings back to a YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("subtitle_delay", settings.SubtitleDelay)
	v.Set("preferred_language", settings.PreferredLanguage)
	v.Set("blacklist", settings.Blacklist)

	c := settings.Customization
	v.Set("customization.enabled", c.Enabled)
	v.Set("customization.font_name", c.FontName)
	v.Set("customization.font_size", c.FontSize)
	v.Set("customization.primary_color", c.PrimaryColor)
	v.Set("customization.outline_color", c.OutlineColor)
	v.Set("customization.shadow_color", c.ShadowColor)
	v.Set("customization.opacity", c.Opacity)
	v.Set("customization.outline_width", c.OutlineWidth)
	v.Set("customization.shadow_depth", c.ShadowDepth)

	if err := v.WriteConfigAs(s.path); err != nil {
		return errors.Wrapf(err, "write config %s", s.path)
	}
	return nil
}
