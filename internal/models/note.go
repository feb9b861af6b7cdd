// Package models defines the domain types shared across vault packages.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMetadata describes the note at path holding data.
func NewMetadata(path string, data []byte, updatedAt time.Time) NoteMetadata {
	return NoteMetadata{
		Path:      path,
		Checksum:  Checksum(data),
		Size:      int64(len(data)),
		UpdatedAt: updatedAt,
	}
}

// Checksum returns the hex-encoded SHA-256 digest of note content. The index
// compares it against the file on disk to skip unchanged notes.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
