package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appName = "photowidget"

// Config holds the application configuration
type Config struct {
	// DataDir holds the preferences file and the owned photo copy (default: XDG data dir)
	DataDir string `toml:"data_dir" json:"data_dir"`
	// DefaultMode is the editor surface opened when no --mode is given ("photo" or "text")
	DefaultMode string `toml:"default_mode" json:"default_mode"`
	// PreviewLength is how many characters of the note the widget tile shows
	PreviewLength int `toml:"preview_length" json:"preview_length"`
	// WindowWidth and WindowHeight set the editor window size in pixels
	WindowWidth  int `toml:"window_width" json:"window_width"`
	WindowHeight int `toml:"window_height" json:"window_height"`
}

// DefaultConfig returns the default configuration values
func DefaultConfig() Config {
	return Config{
		DefaultMode:   "photo",
		PreviewLength: DefaultPreviewLength,
	}
}

// getConfigDir returns the config directory following XDG Base Directory standard
func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// getDataDir returns the default data directory following XDG Base Directory standard
func getDataDir() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}

// LoadConfig loads the configuration from the config file
// Returns default config if file doesn't exist or can't be read
func LoadConfig() Config {
	config := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, &config); err != nil {
				// Don't fail startup due to config issues
				fmt.Fprintf(os.Stderr, "Warning: Failed to parse config file %s: %v\n", configPath, err)
				fmt.Fprintf(os.Stderr, "Using default configuration. Check TOML syntax (string values must be quoted).\n")
				config = DefaultConfig()
			}
		}
	}

	return config.normalized()
}

// normalized fills unset or invalid fields with defaults
func (c Config) normalized() Config {
	if c.DataDir == "" {
		c.DataDir = getDataDir()
	}
	if _, err := ParseMode(c.DefaultMode); err != nil {
		c.DefaultMode = "photo"
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = DefaultPreviewLength
	}
	return c
}

// InitialMode returns the configured default editor mode
func (c Config) InitialMode() Mode {
	return ParseEditorLaunch(c.DefaultMode).Mode
}
