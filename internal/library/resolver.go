package library

import (
	"os"
	"path/filepath"

	"playstream/internal/domain/ports"
)

// maxUsablePathLen mirrors the common PATH_MAX the engine's storage layer can
// open without truncation.
const maxUsablePathLen = 4096

// DiskResolver reports a destination path as usable once the engine has
// actually created the file. Until then resolution returns empty and the
// caller retries on a later tick.
type DiskResolver struct {
	// MaxPathLen overrides the default path-length cutoff. Zero means the
	// platform default.
	MaxPathLen int
}

var _ ports.PathResolver = (*DiskResolver)(nil)

func (r *DiskResolver) Resolve(longPath string) string {
	if longPath == "" {
		return ""
	}
	cleaned := filepath.Clean(longPath)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}

	limit := r.MaxPathLen
	if limit <= 0 {
		limit = maxUsablePathLen
	}
	if len(cleaned) > limit {
		return ""
	}

	info, err := os.Stat(cleaned)
	if err != nil || info.IsDir() {
		return ""
	}
	return cleaned
}
