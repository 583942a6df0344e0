package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const audioURLPrefix = "/audio/"

// BlobStore keeps generated audio files on disk under a single directory,
// addressed by the public /audio/ reference paths written into records.
type BlobStore struct {
	dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

func (b *BlobStore) Write(name string, data []byte) error {
	return os.WriteFile(filepath.Join(b.dir, filepath.Base(name)), data, 0o644)
}

func (b *BlobStore) URLFor(name string) string {
	return audioURLPrefix + filepath.Base(name)
}

func (b *BlobStore) Dir() string {
	return b.dir
}

// Remove deletes the blob referenced by a record's audio URL. Best effort:
// non-local references and missing files are ignored so record deletion
// never blocks on blob state.
func (b *BlobStore) Remove(audioURL string) {
	if !strings.HasPrefix(audioURL, audioURLPrefix) {
		return
	}
	_ = os.Remove(filepath.Join(b.dir, filepath.Base(audioURL)))
}
