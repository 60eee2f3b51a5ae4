package core

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the workspace configuration file (~/.config/nv/config.toml).
type Config struct {
	UserID      string `toml:"user_id"`
	Username    string `toml:"username"`
	DisplayName string `toml:"display_name"`
	Email       string `toml:"email"`
	Role        string `toml:"role"`
	StateDir    string `toml:"state_dir"`
	DefaultRoom string `toml:"default_room"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nv", "config.toml"), nil
}

// DefaultStateDir returns the workspace state directory.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "nv"), nil
}

// ReadConfig reads the workspace config if present; nil means not initialized.
func ReadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// WriteConfig writes the workspace config to disk.
func WriteConfig(config Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DBPath returns the SQLite database path for a state dir.
func DBPath(stateDir string) string {
	return filepath.Join(stateDir, "navio.db")
}
