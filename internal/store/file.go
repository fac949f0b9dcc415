package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// optionFileExtension is the file extension used for option files.
const optionFileExtension = ".json"

// fileEntry is the on-disk envelope. The original key is kept so pattern
// deletes match the key, not its sanitized file name.
type fileEntry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File stores one JSON file per option in a directory.
// Thread-safe for concurrent access within a process.
type File struct {
	directory string
	mu        sync.RWMutex
}

// NewFile creates a file-backed store. The directory is created if needed.
func NewFile(directory string) (*File, error) {
	if directory == "" {
		return nil, errors.New("option store directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create option store directory: %w", err)
	}
	return &File{directory: directory}, nil
}

// Get reads the option stored under key.
func (s *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := readFileEntry(s.keyToFilePath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	// Keys that differ only in path separators share a file.
	if entry.Key != key {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set writes the option atomically (temp file then rename).
func (s *File) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fileEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal option: %w", err)
	}

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write option file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename option file: %w", renameErr)
	}
	return nil
}

// Delete removes the option. Missing options are not an error, and a file
// holding a different key is left alone.
func (s *File) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	if entry, err := readFileEntry(path); err == nil && entry.Key != key {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete option file: %w", err)
	}
	return nil
}

// DeleteMatching removes up to limit options whose key matches pattern.
// Unreadable files are skipped.
func (s *File) DeleteMatching(_ context.Context, pattern string, limit int) (int, error) {
	re := likeRegexp(pattern)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read option store directory: %w", err)
	}

	type match struct{ key, path string }
	var matches []match
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != optionFileExtension {
			continue
		}
		path := filepath.Join(s.directory, dirEntry.Name())
		entry, readErr := readFileEntry(path)
		if readErr != nil {
			continue
		}
		if re.MatchString(entry.Key) {
			matches = append(matches, match{key: entry.Key, path: path})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].key < matches[j].key })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	deleted := 0
	for _, m := range matches {
		if removeErr := os.Remove(m.path); removeErr != nil && !os.IsNotExist(removeErr) {
			return deleted, fmt.Errorf("failed to remove option file %s: %w", m.path, removeErr)
		}
		deleted++
	}
	return deleted, nil
}

// Close is a no-op for the file store.
func (s *File) Close() error {
	return nil
}

// Directory returns the store directory.
func (s *File) Directory() string {
	return s.directory
}

// keyToFilePath converts a key to a file path safe for the filesystem.
func (s *File) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+optionFileExtension)
}

func readFileEntry(path string) (*fileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read option file: %w", err)
	}
	var entry fileEntry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal option file: %w", unmarshalErr)
	}
	return &entry, nil
}

var _ Store = (*File)(nil)
