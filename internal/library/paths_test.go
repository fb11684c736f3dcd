package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"playstream/internal/domain"
)

func TestSavePathPerKind(t *testing.T) {
	root := t.TempDir()
	movies := filepath.Join(root, "movies")
	shows := filepath.Join(root, "shows")

	paths, err := NewPaths(movies, shows)
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}

	got, err := paths.SavePath(domain.MediaKindMovie)
	if err != nil {
		t.Fatalf("movie save path: %v", err)
	}
	if got != movies {
		t.Fatalf("movie save path = %q, want %q", got, movies)
	}

	got, err = paths.SavePath(domain.MediaKindShow)
	if err != nil {
		t.Fatalf("show save path: %v", err)
	}
	if got != shows {
		t.Fatalf("show save path = %q, want %q", got, shows)
	}
}

func TestSavePathCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	movies := filepath.Join(root, "nested", "movies")

	if _, err := NewPaths(movies, filepath.Join(root, "shows")); err != nil {
		t.Fatalf("NewPaths: %v", err)
	}
	if info, err := os.Stat(movies); err != nil || !info.IsDir() {
		t.Fatalf("movies dir not created: %v", err)
	}
}

func TestSavePathUnknownKind(t *testing.T) {
	root := t.TempDir()
	paths, err := NewPaths(filepath.Join(root, "movies"), filepath.Join(root, "shows"))
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}

	if _, err := paths.SavePath(domain.MediaKindUnknown); !errors.Is(err, domain.ErrUnknownMediaKind) {
		t.Fatalf("expected ErrUnknownMediaKind, got %v", err)
	}
}

func TestNewPathsRejectsEmptyDir(t *testing.T) {
	if _, err := NewPaths("", t.TempDir()); err == nil {
		t.Fatal("expected error for empty movies dir")
	}
}

func TestResolveWaitsForFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "show.mkv")
	resolver := &DiskResolver{}

	if got := resolver.Resolve(target); got != "" {
		t.Fatalf("resolved before file exists: %q", got)
	}

	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := resolver.Resolve(target); got != target {
		t.Fatalf("resolved = %q, want %q", got, target)
	}
}

func TestResolveRejectsDirectoriesAndLongPaths(t *testing.T) {
	dir := t.TempDir()
	resolver := &DiskResolver{MaxPathLen: 10}

	if got := resolver.Resolve(dir); got != "" {
		t.Fatalf("resolved a directory: %q", got)
	}

	target := filepath.Join(dir, "a-name-well-past-the-limit.mkv")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := resolver.Resolve(target); got != "" {
		t.Fatalf("resolved over-length path: %q", got)
	}
}

func TestResolveEmptyInput(t *testing.T) {
	resolver := &DiskResolver{}
	if got := resolver.Resolve(""); got != "" {
		t.Fatalf("resolved empty input: %q", got)
	}
}
