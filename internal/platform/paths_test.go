package platform

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestPathsForLinuxWithXDG verifies XDG overrides on linux.
func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_DATA_HOME":   "/xdg/data",
	}, "/fallback/config", "/fallback/data", "taskboard")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/xdg/config", "taskboard", "config.toml"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if want := filepath.Join("/xdg/data", "taskboard", "taskboard.db"); p.DBPath != want {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if want := filepath.Join("/xdg/data", "taskboard", "logs"); p.LogDir != want {
		t.Fatalf("unexpected log dir %q", p.LogDir)
	}
}

// TestPathsForLinuxFallback verifies base dirs are used without XDG variables.
func TestPathsForLinuxFallback(t *testing.T) {
	p, err := PathsFor("linux", nil, "/home/me/.config", "/home/me/.local/share", "taskboard")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/home/me/.local/share", "taskboard"); p.DataDir != want {
		t.Fatalf("unexpected data dir %q", p.DataDir)
	}
}

// TestPathsForWindowsUsesAppData verifies APPDATA and LOCALAPPDATA overrides.
func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
	}, `C:\fallback\config`, `C:\fallback\data`, "taskboard")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join(`C:\Users\me\AppData\Roaming`, "taskboard", "config.toml"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if want := filepath.Join(`C:\Users\me\AppData\Local`, "taskboard", "taskboard.db"); p.DBPath != want {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

// TestPathsForDarwinIgnoresXDG verifies macOS keeps the OS defaults.
func TestPathsForDarwinIgnoresXDG(t *testing.T) {
	base := "/Users/me/Library/Application Support"
	p, err := PathsFor("darwin", map[string]string{"XDG_CONFIG_HOME": "/ignored"}, base, base, "taskboard")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if strings.HasPrefix(p.ConfigPath, "/ignored") {
		t.Fatalf("expected XDG ignored on darwin, got %q", p.ConfigPath)
	}
}

// TestPathsForRejectsEmptyInput verifies empty base dirs and app names fail.
func TestPathsForRejectsEmptyInput(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "taskboard"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("linux", nil, "/c", "/d", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestDefaultPathsWithOptionsDevSuffix verifies dev mode isolates paths.
func TestDefaultPathsWithOptionsDevSuffix(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	p, err := DefaultPathsWithOptions(Options{AppName: "taskboard", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if !strings.HasSuffix(p.DBPath, "taskboard-dev.db") {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
