package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
)

const settingsFile = "settings.json"

type settings struct {
	Credentials      gateway.Credentials `json:"credentials"`
	ActiveCampaignID string              `json:"active_campaign_id,omitempty"`
}

// FileStore keeps settings in settings.json and one JSON file per profile
// under records/. Concurrent writers to the same profile are last-write-wins.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a FileStore and ensures its directories exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "records"), 0o700); err != nil {
		return nil, fmt.Errorf("session store: mkdir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// recordKey is a stable file name for a canonical profile URL.
func recordKey(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

func (s *FileStore) recordPath(url string) string {
	return filepath.Join(s.dir, "records", recordKey(url)+".json")
}

func (s *FileStore) readSettings() (settings, error) {
	var st settings
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("session store: read settings: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("session store: unmarshal settings: %w", err)
	}
	return st, nil
}

func (s *FileStore) writeSettings(st settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session store: marshal settings: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.dir, settingsFile), data)
}

func (s *FileStore) Credentials() (gateway.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, err := s.readSettings()
	return st.Credentials, err
}

func (s *FileStore) SaveCredentials(c gateway.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.readSettings()
	if err != nil {
		return err
	}
	st.Credentials = c
	return s.writeSettings(st)
}

func (s *FileStore) ActiveCampaignID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, err := s.readSettings()
	return st.ActiveCampaignID, err
}

func (s *FileStore) SetActiveCampaignID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.readSettings()
	if err != nil {
		return err
	}
	st.ActiveCampaignID = strings.TrimSpace(id)
	return s.writeSettings(st)
}

// Record reads the cached entry for a canonical URL.
func (s *FileStore) Record(url string) (Entry, bool, error) {
	url = profile.CanonicalURL(url)
	if url == "" {
		return Entry{}, false, apperr.Validation("profile url is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(url))
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("session store: read record: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("session store: unmarshal record: %w", err)
	}
	return e, true, nil
}

func (s *FileStore) SaveRecord(e Entry) error {
	url := profile.CanonicalURL(e.Record.URL)
	if url == "" {
		return apperr.Validation("profile url is required")
	}
	e.Record.URL = url

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("session store: marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.recordPath(url), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("session store: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("session store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("session store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("session store: rename: %w", err)
	}
	return nil
}
