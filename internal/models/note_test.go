package models

import (
	"testing"
	"time"
)

func TestChecksum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Checksum(nil); got != empty {
		t.Errorf("Checksum(nil) = %q", got)
	}
	if Checksum([]byte("a")) == Checksum([]byte("b")) {
		t.Error("different content should not share a checksum")
	}
}

func TestNewMetadata(t *testing.T) {
	now := time.Now()
	m := NewMetadata("dir/n.md", []byte("hello"), now)
	if m.Path != "dir/n.md" || m.Size != 5 || !m.UpdatedAt.Equal(now) || m.Checksum != Checksum([]byte("hello")) {
		t.Errorf("metadata = %+v", m)
	}
}
