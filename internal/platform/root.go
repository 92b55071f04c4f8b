package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root indicators, checked in every directory from the start upwards.
var rootMarkers = []string{".jotter", "jotter.db", "jotter.yaml"}

// FindRoot looks upwards from startDir for a directory holding a store or
// its config and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no jotter store found above %s", startDir)
		}
		dir = parent
	}
}
