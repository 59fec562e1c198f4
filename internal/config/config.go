// Package config reads and writes the repository configuration file
// (.rgit/config), a TOML document with [user], [core] and [remotes] tables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/KostasZigo/rgit/internal/constants"
)

var (
	// ErrUnknownKey is returned by Get and Set for keys outside the known sections.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrRemoteNotFound is returned when a remote name has no configured path.
	ErrRemoteNotFound = errors.New("remote not found")
)

// Config is the decoded configuration file.
type Config struct {
	User    User              `toml:"user"`
	Core    Core              `toml:"core"`
	Remotes map[string]string `toml:"remotes,omitempty"`
}

// User identifies the author recorded in new commits.
type User struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// Core holds engine tuning knobs.
type Core struct {
	ObjectCacheSize int `toml:"object_cache_size"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Core:    Core{ObjectCacheSize: constants.DefaultObjectCacheSize},
		Remotes: map[string]string{},
	}
}

// Load decodes the file at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No config file, using defaults",
			"path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("Ignoring unknown config key",
			"path", path,
			"key", key.String())
	}

	if cfg.Remotes == nil {
		cfg.Remotes = map[string]string{}
	}
	return cfg, nil
}

// Save writes the configuration to path, replacing any previous content.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Author formats the configured user as "name <email>".
// ok is false when no name is configured.
func (c *Config) Author() (author string, ok bool) {
	name := strings.TrimSpace(c.User.Name)
	if name == "" {
		return "", false
	}

	email := strings.TrimSpace(c.User.Email)
	if email == "" {
		return name, true
	}
	return fmt.Sprintf("%s <%s>", name, email), true
}

// Remote returns the repository path configured for name.
func (c *Config) Remote(name string) (string, error) {
	path, ok := c.Remotes[name]
	if !ok || path == "" {
		return "", fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}
	return path, nil
}

// Get returns the value of a dotted key such as "user.name" or "remotes.origin".
func (c *Config) Get(key string) (string, error) {
	section, name, _ := strings.Cut(key, ".")

	switch {
	case key == "user.name":
		return c.User.Name, nil
	case key == "user.email":
		return c.User.Email, nil
	case key == "core.object_cache_size":
		return strconv.Itoa(c.Core.ObjectCacheSize), nil
	case section == "remotes" && name != "":
		return c.Remote(name)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns a dotted key. Values are validated for numeric keys.
func (c *Config) Set(key, value string) error {
	section, name, _ := strings.Cut(key, ".")

	switch {
	case key == "user.name":
		c.User.Name = value
	case key == "user.email":
		c.User.Email = value
	case key == "core.object_cache_size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		c.Core.ObjectCacheSize = size
	case section == "remotes" && name != "":
		if c.Remotes == nil {
			c.Remotes = map[string]string{}
		}
		c.Remotes[name] = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Keys lists every key currently holding a value, in display order.
func (c *Config) Keys() []string {
	var keys []string
	if c.User.Name != "" {
		keys = append(keys, "user.name")
	}
	if c.User.Email != "" {
		keys = append(keys, "user.email")
	}
	keys = append(keys, "core.object_cache_size")

	remotes := make([]string, 0, len(c.Remotes))
	for name := range c.Remotes {
		remotes = append(remotes, "remotes."+name)
	}
	slices.Sort(remotes)
	return append(keys, remotes...)
}
