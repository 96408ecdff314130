//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	return []string{
		filepath.Join(os.Getenv("LOCALAPPDATA"), "sysstats", "config.yaml"),
		filepath.Join(os.Getenv("ProgramData"), "sysstats", "config.yaml"),
	}
}
