// Package paths provides centralized path resolution for the knowledge
// repository tooling's own data directories.
//
// The tool supports the XDG Base Directory Specification:
//
//   - State (XDG_STATE_HOME): logs/ — transient log files
//   - Data (XDG_DATA_HOME): reserved for future local caches
//
// Resolution order:
//  1. If ~/.knowledge-repo/ exists → use legacy flat layout
//  2. If XDG env vars are set → use XDG layout
//  3. Fresh install, no XDG vars → default to ~/.knowledge-repo/
package paths

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	resolved *resolvedPaths
)

type resolvedPaths struct {
	dataDir  string
	stateDir string
	legacy   bool
}

// resolve computes the path layout once and caches it.
func resolve() (*resolvedPaths, error) {
	mu.Lock()
	defer mu.Unlock()

	if resolved != nil {
		return resolved, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	legacyDir := filepath.Join(home, ".knowledge-repo")

	// 1. If ~/.knowledge-repo/ exists, use legacy layout
	if info, err := os.Stat(legacyDir); err == nil && info.IsDir() {
		resolved = &resolvedPaths{
			dataDir:  legacyDir,
			stateDir: legacyDir,
			legacy:   true,
		}
		return resolved, nil
	}

	// 2. Check XDG env vars
	xdgData := os.Getenv("XDG_DATA_HOME")
	xdgState := os.Getenv("XDG_STATE_HOME")

	if xdgData != "" || xdgState != "" {
		// Use XDG layout — fill in defaults for unset vars
		if xdgData == "" {
			xdgData = filepath.Join(home, ".local", "share")
		}
		if xdgState == "" {
			xdgState = filepath.Join(home, ".local", "state")
		}
		resolved = &resolvedPaths{
			dataDir:  filepath.Join(xdgData, "knowledge-repo"),
			stateDir: filepath.Join(xdgState, "knowledge-repo"),
			legacy:   false,
		}
		return resolved, nil
	}

	// 3. Fresh install, no XDG — default to legacy
	resolved = &resolvedPaths{
		dataDir:  legacyDir,
		stateDir: legacyDir,
		legacy:   true,
	}
	return resolved, nil
}

// DataDir returns the directory for persistent data files.
func DataDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.dataDir, nil
}

// StateDir returns the directory for runtime state and logs.
func StateDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.stateDir, nil
}

// LogsDir returns the directory for log files.
func LogsDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// IsLegacyLayout returns true if using the ~/.knowledge-repo/ flat layout.
func IsLegacyLayout() bool {
	r, err := resolve()
	if err != nil {
		return true // assume legacy on error
	}
	return r.legacy
}

// Reset clears the cached path resolution. This is intended for testing only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resolved = nil
}
