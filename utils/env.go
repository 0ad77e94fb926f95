package utils

import (
	"os"
	"path/filepath"
)

// HomeDir returns $HOME and whether it was set at all. Without a home
// directory we don't read or write anything on the user's disk.
func HomeDir() (string, bool) {
	home, ok := os.LookupEnv("HOME")
	if !ok || home == "" {
		return "/", false
	}
	return home, true
}

// CacheDir follows the XDG convention, falling back to ~/.cache
func CacheDir(app string) (string, bool) {
	home, ok := HomeDir()
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, app), true
	}
	if !ok {
		return "", false
	}
	return filepath.Join(home, ".cache", app), true
}

// ConfigDir follows the XDG convention, falling back to ~/.config
func ConfigDir(app string) (string, bool) {
	home, ok := HomeDir()
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, app), true
	}
	if !ok {
		return "", false
	}
	return filepath.Join(home, ".config", app), true
}
