// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/vaultmcp/internal/models"

// Provider is the interface for vault file operations.
// All paths are relative to the vault root and use forward slashes.
type Provider interface {
	// List returns metadata for every note under dir, sorted by path.
	List(dir string) ([]models.NoteMetadata, error)
	// Resolve maps a caller-supplied note name to an existing vault path.
	Resolve(name string) (string, error)
	// Normalize applies the default note extension to name.
	Normalize(name string) string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
