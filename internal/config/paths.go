package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory
// (~/.procwing). It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".procwing"), nil
}

// GetDataBasePath returns the directory holding partition store files.
// Resolution order (first match wins):
// 1. Explicit config via "data.dir" (Viper/env/flag)
// 2. Local project directory: .procwing/data (if exists)
// 3. XDG_DATA_HOME/procwing (if XDG_DATA_HOME is set)
// 4. Global fallback: ~/.procwing/data
func GetDataBasePath() string {
	if path := viper.GetString("data.dir"); path != "" {
		return path
	}

	localData := filepath.Join(".procwing", "data")
	if info, err := os.Stat(localData); err == nil && info.IsDir() {
		return localData
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "procwing")
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(dir, "data")
}
