// Package platform resolves per-OS config, data, and log locations.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the directories and database file when no override is set.
const DefaultAppName = "taskboard"

// Paths holds resolved locations for one app name.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options selects the app name and dev-mode suffix.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths from the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := make(map[string]string, 4)
	for _, o := range baseOverrides[runtime.GOOS] {
		env[o.configVar] = os.Getenv(o.configVar)
		env[o.dataVar] = os.Getenv(o.dataVar)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// baseOverride names the env vars that replace the config and data base dirs on one OS.
type baseOverride struct {
	configVar string
	dataVar   string
}

// baseOverrides lists env overrides per GOOS. Other platforms keep the OS defaults.
var baseOverrides = map[string][]baseOverride{
	"linux":   {{configVar: "XDG_CONFIG_HOME", dataVar: "XDG_DATA_HOME"}},
	"windows": {{configVar: "APPDATA", dataVar: "LOCALAPPDATA"}},
}

// PathsFor resolves paths for an explicit OS, environment, and base directories.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	for _, o := range baseOverrides[goos] {
		if v := env[o.configVar]; v != "" {
			configBase = v
		}
		if v := env[o.dataVar]; v != "" {
			dataBase = v
		}
	}

	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, appName+".db"),
		LogDir:     filepath.Join(appDataDir, "logs"),
	}, nil
}
