// Package config resolves client configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the environment does not override them.
const (
	DefaultBaseURL  = "http://localhost:3333/api"
	DefaultTimeout  = 10 * time.Second
	DefaultPageSize = 6
	DefaultDebounce = 600 * time.Millisecond
)

// Config holds all client settings.
type Config struct {
	// BaseURL is the remote service base address, e.g. http://host:3333/api.
	BaseURL string `mapstructure:"base_url"`
	// HTTPTimeout bounds every remote call issued by the dispatcher.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// PageSize is the number of items requested per feed page.
	PageSize int `mapstructure:"page_size"`
	// Debounce is the quiet window applied to search input before fetching.
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads configuration from PUBLIFLOW_* environment variables,
// falling back to hard-coded defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("publiflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("http_timeout", DefaultTimeout)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("debounce", DefaultDebounce)

	// AutomaticEnv alone does not surface keys to Unmarshal; bind them explicitly.
	for _, key := range []string{"base_url", "http_timeout", "page_size", "debounce"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
