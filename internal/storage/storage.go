package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay/session"
)

const (
	CookieFile   = "cookie_file"
	DeviceIDFile = "deviceId"
	TempDirName  = "tmp"
)

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("settings folder is not set")
	}

	if err := os.MkdirAll(filepath.Join(basePath, TempDirName), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// DeviceID returns the persisted device identifier, generating and storing a
// new UUID on first use.
func (s *Storage) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, DeviceIDFile)

	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.New().String()
	if err := renameio.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}
	return id, nil
}

// LoadSession fills sess from the cookie file. A missing file is not an error.
func (s *Storage) LoadSession(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.basePath, CookieFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer f.Close()

	if _, err := sess.ReadFrom(f); err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}
	return nil
}

// SaveSession atomically replaces the cookie file with the current jar.
func (s *Storage) SaveSession(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if _, err := sess.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := renameio.WriteFile(filepath.Join(s.basePath, CookieFile), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

func (s *Storage) HasSession() bool {
	_, err := os.Stat(filepath.Join(s.basePath, CookieFile))
	return err == nil
}

func (s *Storage) DeleteSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.basePath, CookieFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// TempDir is where downloaded subtitles are written.
func (s *Storage) TempDir() string {
	return filepath.Join(s.basePath, TempDirName)
}

func (s *Storage) GetBasePath() string {
	return s.basePath
}
