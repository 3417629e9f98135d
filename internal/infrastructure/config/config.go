// Package config provides configuration-file loading for gitledger.
// The file is TOML with two optional keys: a list of repository names to
// ignore during discovery, and an author-identity map from email to
// canonical display name.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/gitledger/gitledger/internal/domain"
)

// Config holds the parsed configuration file.
type Config struct {
	// IgnoredRepositories lists repository (directory) names excluded from
	// discovery.
	IgnoredRepositories []string

	// AuthorMap normalizes author display names by email.
	AuthorMap domain.AuthorIdentityMap
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{AuthorMap: domain.AuthorIdentityMap{}}
}

// Load reads the TOML configuration at path. A missing file is not an
// error: defaults are returned, matching the behavior of running without a
// configuration file.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		IgnoredRepositories: v.GetStringSlice("ignored_repositories"),
		AuthorMap:           domain.AuthorIdentityMap(v.GetStringMapString("author_map")),
	}
	if cfg.AuthorMap == nil {
		cfg.AuthorMap = domain.AuthorIdentityMap{}
	}
	return cfg, nil
}
