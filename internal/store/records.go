package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"timecast/internal/models"
)

// ErrNotFound is returned when a record is absent, or exists but is not
// owned by the requesting user.
var ErrNotFound = errors.New("podcast not found")

// RecordStore keeps the full record list in one JSON file. Every
// read-modify-write cycle holds the mutex so concurrent writers cannot lose
// updates to the whole-list rewrite.
type RecordStore struct {
	path string
	mu   sync.Mutex
}

func NewRecordStore(path string) (*RecordStore, error) {
	s := &RecordStore{path: path}
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RecordStore) ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return os.WriteFile(s.path, []byte("[]"), 0o644)
}

func (s *RecordStore) readAll() ([]models.PodcastRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read record store: %w", err)
	}
	var records []models.PodcastRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode record store: %w", err)
	}
	return records, nil
}

func (s *RecordStore) writeAll(records []models.PodcastRecord) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// ReadAll returns every stored record, newest first.
func (s *RecordStore) ReadAll() ([]models.PodcastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Insert prepends the record so listings stay newest-first.
func (s *RecordStore) Insert(record models.PodcastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	records = append([]models.PodcastRecord{record}, records...)
	return s.writeAll(records)
}

// GetByID looks a record up without an ownership check; the id itself is the
// capability for share links.
func (s *RecordStore) GetByID(id string) (models.PodcastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return models.PodcastRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.PodcastRecord{}, ErrNotFound
}

// GetOwned returns the record only when it belongs to the given owner email.
func (s *RecordStore) GetOwned(id, email string) (models.PodcastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return models.PodcastRecord{}, err
	}
	for _, r := range records {
		if r.ID == id && ownedBy(r, email) {
			return r, nil
		}
	}
	return models.PodcastRecord{}, ErrNotFound
}

// ListOwned returns listing summaries for the owner's records.
func (s *RecordStore) ListOwned(email string) ([]models.PodcastSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	summaries := make([]models.PodcastSummary, 0)
	for _, r := range records {
		if ownedBy(r, email) {
			summaries = append(summaries, r.Summarize())
		}
	}
	return summaries, nil
}

// DeleteOwned removes one owned record and returns it so the caller can
// clean up its audio blob.
func (s *RecordStore) DeleteOwned(id, email string) (models.PodcastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return models.PodcastRecord{}, err
	}

	idx := -1
	for i, r := range records {
		if r.ID == id && ownedBy(r, email) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.PodcastRecord{}, ErrNotFound
	}

	target := records[idx]
	records = append(records[:idx], records[idx+1:]...)
	if err := s.writeAll(records); err != nil {
		return models.PodcastRecord{}, err
	}
	return target, nil
}

// DeleteAllOwned removes every record of the owner and returns the removed
// records for blob cleanup.
func (s *RecordStore) DeleteAllOwned(email string) ([]models.PodcastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var removed, kept []models.PodcastRecord
	for _, r := range records {
		if ownedBy(r, email) {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	if kept == nil {
		kept = []models.PodcastRecord{}
	}
	if err := s.writeAll(kept); err != nil {
		return nil, err
	}
	return removed, nil
}

func ownedBy(r models.PodcastRecord, email string) bool {
	return strings.EqualFold(r.User.Email, email)
}
