// Package dotdir manages the .lenshub/ and ~/.lenshub directories.
//
// The dot directory holds the server's config.toml, the sqlite database, and
// uploaded component assets.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the lenshub directory.
	dirName = ".lenshub"

	// uploadsDirName is the subdirectory uploaded assets land in.
	uploadsDirName = "uploads"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .lenshub/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.lenshub/ dir
//  3. Home ~/.lenshub/ dir
//  4. If none found, attempt to create ~/.lenshub/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating lenshub directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// UploadsDir resolves (and creates) the uploads subdirectory of the target
// dot directory.
func (m *Manager) UploadsDir(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, uploadsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .lenshub/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
