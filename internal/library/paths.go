// Package library maps media kinds to storage directories and resolves
// destination paths once the engine materializes files on disk.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// Paths routes downloads into per-kind library directories.
type Paths struct {
	moviesDir string
	showsDir  string
}

var _ ports.SavePathProvider = (*Paths)(nil)

// NewPaths normalizes both directories and creates them if missing.
func NewPaths(moviesDir, showsDir string) (*Paths, error) {
	movies, err := prepareDir(moviesDir)
	if err != nil {
		return nil, fmt.Errorf("movies dir: %w", err)
	}
	shows, err := prepareDir(showsDir)
	if err != nil {
		return nil, fmt.Errorf("shows dir: %w", err)
	}
	return &Paths{moviesDir: movies, showsDir: shows}, nil
}

func prepareDir(dir string) (string, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return "", fmt.Errorf("directory is not configured")
	}
	cleaned := filepath.Clean(trimmed)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if err := os.MkdirAll(cleaned, 0o755); err != nil {
		return "", err
	}
	return cleaned, nil
}

func (p *Paths) SavePath(kind domain.MediaKind) (string, error) {
	switch kind {
	case domain.MediaKindMovie:
		return p.moviesDir, nil
	case domain.MediaKindShow:
		return p.showsDir, nil
	default:
		return "", fmt.Errorf("save path for kind %q: %w", kind, domain.ErrUnknownMediaKind)
	}
}
