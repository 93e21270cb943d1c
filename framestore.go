package pep1

import (
	"fmt"
	"io"
	"os"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

// FrameStore persists and retrieves encoded PEP1 frames against a
// pluggable filesystem-shaped storage backend (SPEC_FULL.md §4.7). This is
// storage, not transport: PEP1 still never opens a socket or retries a
// send, but a constrained device commonly needs to park an encoded frame
// in byte-addressable storage before or after it crosses a transport this
// package knows nothing about. Any absfs.FileSystem works, from the
// in-memory backend used in tests to a flash-backed implementation in a
// real embedded deployment.
type FrameStore struct {
	fs absfs.FileSystem
}

// NewFrameStore wraps fs for frame storage.
func NewFrameStore(fs absfs.FileSystem) *FrameStore {
	return &FrameStore{fs: fs}
}

// Put writes frame under name, overwriting any existing blob of that name.
func (s *FrameStore) Put(name string, frame []byte) error {
	f, err := s.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("pep1: framestore put %q: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(frame); err != nil {
		return fmt.Errorf("pep1: framestore put %q: %w", name, err)
	}
	return nil
}

// Get reads back the frame previously stored under name.
func (s *FrameStore) Get(name string) ([]byte, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("pep1: framestore get %q: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("pep1: framestore get %q: %w", name, err)
	}
	return data, nil
}

// Delete removes the blob stored under name.
func (s *FrameStore) Delete(name string) error {
	if err := s.fs.Remove(name); err != nil {
		return fmt.Errorf("pep1: framestore delete %q: %w", name, err)
	}
	return nil
}

// PutFrame stores frame under a name derived from sessionID, so a frame
// produced by one SessionRegistry-tracked encode can be located later by
// whatever correlates sessions (logs, a request ID, etc.). It returns the
// name the frame was stored under.
func (s *FrameStore) PutFrame(sessionID uuid.UUID, frame []byte) (string, error) {
	name := "frame-" + sessionID.String() + ".pep1"
	if err := s.Put(name, frame); err != nil {
		return "", err
	}
	return name, nil
}
