// Package config provides YAML-based platform configuration loading.
package config

// Config holds the platform-wide settings shared by the CLI commands.
type Config struct {
	// Database is the episode database path. A leading ~ expands to the
	// user's home directory.
	Database string `yaml:"database"`

	// Seed is the default seed for procedural games. Zero means derive a
	// seed from the current time at episode start.
	Seed int64 `yaml:"seed"`

	// Levels optionally points at a directory of custom level files.
	Levels string `yaml:"levels,omitempty"`

	Serve ServeConfig `yaml:"serve"`
}

// ServeConfig holds the SSH server settings.
type ServeConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: "~/.gridstage/episodes.db",
		Seed:     0,
		Serve: ServeConfig{
			Host:        "localhost",
			Port:        23234,
			HostKeyPath: "~/.gridstage/id_ed25519",
		},
	}
}
