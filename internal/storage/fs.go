package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/models"
)

// DefaultExtension is appended to note names given without an extension.
const DefaultExtension = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root   string // absolute path to vault directory
	ext    string
	ignore []glob.Glob
}

// Option configures an FS.
type Option func(*FS) error

// WithExtension sets the note extension (default ".md").
func WithExtension(ext string) Option {
	return func(f *FS) error {
		if ext == "" {
			return nil
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.ext = ext
		return nil
	}
}

// WithIgnore excludes vault paths matching any of the glob patterns
// (matched against the slash-separated path relative to the vault root).
func WithIgnore(patterns ...string) Option {
	return func(f *FS) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return fmt.Errorf("storage: ignore pattern %q: %w", p, err)
			}
			f.ignore = append(f.ignore, g)
		}
		return nil
	}
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs, ext: DefaultExtension}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string {
	return f.root
}

// IsNote reports whether a vault-relative path is a note that is not ignored.
func (f *FS) IsNote(rel string) bool {
	return strings.HasSuffix(rel, f.ext) && !f.ignored(filepath.ToSlash(rel))
}

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute paths not allowed: %s", apperr.ErrInvalidArgument, rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("%w: path escapes vault root: %s", apperr.ErrInvalidArgument, rel)
	}
	return abs, nil
}

func (f *FS) rel(abs string) string {
	rel, _ := filepath.Rel(f.root, abs)
	return filepath.ToSlash(rel)
}

func (f *FS) ignored(rel string) bool {
	for _, g := range f.ignore {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Normalize appends the note extension when name does not already end with it.
func (f *FS) Normalize(name string) string {
	name = filepath.ToSlash(strings.TrimSpace(name))
	if !strings.HasSuffix(name, f.ext) {
		name += f.ext
	}
	return name
}

// Resolve maps a caller-supplied note name to an existing vault path.
// A name that exists as a vault-relative path wins; otherwise a bare file
// name is looked up anywhere in the vault and must be unique.
func (f *FS) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: note name is empty", apperr.ErrInvalidArgument)
	}
	want := f.Normalize(name)
	abs, err := f.safePath(want)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return f.rel(abs), nil
	}
	if strings.Contains(want, "/") {
		return "", fmt.Errorf("%w: note %s", apperr.ErrNotFound, want)
	}

	var hits []string
	err = filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel := f.rel(p)
		if d.IsDir() {
			if p != f.root && f.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == want && !f.ignored(rel) {
			hits = append(hits, rel)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", name, err)
	}
	switch len(hits) {
	case 0:
		return "", fmt.Errorf("%w: no note named %s in vault", apperr.ErrNotFound, want)
	case 1:
		return hits[0], nil
	default:
		sort.Strings(hits)
		return "", fmt.Errorf("%w: %s matches %s; pass the path instead",
			apperr.ErrAmbiguousTarget, want, strings.Join(hits, ", "))
	}
}

// List walks dir (relative to root) and returns metadata for every note.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(base); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", apperr.ErrNotFound, dir)
	}
	var out []models.NoteMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel := f.rel(p)
		if d.IsDir() {
			if p != f.root && f.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !f.IsNote(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, models.NewMetadata(rel, data, info.ModTime()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vaultmcp-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
