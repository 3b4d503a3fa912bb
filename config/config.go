// Package config stores named connection profiles and resolves their
// secrets from the OS keyring.
package config

import (
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/joacominatel/sqlbridge/drivers"
)

// keyringService namespaces this library's entries in the OS keyring.
const keyringService = "sqlbridge"

// Config represents the saved profiles and preferences.
type Config struct {
	Profiles    []Profile   `mapstructure:"profiles" yaml:"profiles"`
	Preferences Preferences `mapstructure:"preferences" yaml:"preferences"`
}

// Profile is a saved connection. Password is optional: when empty the
// secret is looked up in the OS keyring under the profile name.
type Profile struct {
	Name     string `mapstructure:"name" yaml:"name"`
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultProfile string `mapstructure:"default_profile" yaml:"default_profile"`
}

// Target resolves the profile into a connection target. Profiles
// without a username connect anonymously; profiles with one must have
// a password inline or in the keyring.
func (p Profile) Target() (drivers.Target, error) {
	t := drivers.Target{
		URL:      p.URL,
		Username: p.Username,
	}
	if p.Username == "" {
		return t, nil
	}

	if p.Password != "" {
		t.Password = []byte(p.Password)
		return t, nil
	}

	secret, err := keyring.Get(keyringService, p.Name)
	if err != nil {
		return drivers.Target{}, fmt.Errorf("secret for profile %q: %w", p.Name, err)
	}
	t.Password = []byte(secret)
	return t, nil
}

// SetSecret stores a profile's password in the OS keyring.
func SetSecret(profileName, secret string) error {
	return keyring.Set(keyringService, profileName, secret)
}

// DeleteSecret removes a profile's password from the OS keyring.
func DeleteSecret(profileName string) error {
	return keyring.Delete(keyringService, profileName)
}

// HasProfile checks if a profile with the given name already exists.
func (cfg *Config) HasProfile(name string) bool {
	for _, p := range cfg.Profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// AddProfile appends a profile if it doesn't already exist.
func (cfg *Config) AddProfile(p Profile) {
	if !cfg.HasProfile(p.Name) {
		cfg.Profiles = append(cfg.Profiles, p)
	}
}

// DefaultProfile returns the preferred profile, or the first one.
func DefaultProfile(cfg *Config) *Profile {
	if len(cfg.Profiles) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultProfile != "" {
		for i := range cfg.Profiles {
			if cfg.Profiles[i].Name == cfg.Preferences.DefaultProfile {
				return &cfg.Profiles[i]
			}
		}
	}

	return &cfg.Profiles[0]
}
