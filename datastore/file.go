package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FileConfig holds configuration options for the FileStore
type FileConfig struct {
	FilePath    string
	BackupCount int // Number of backup files to keep
}

// DefaultFileConfig returns a default configuration
func DefaultFileConfig(filePath string) *FileConfig {
	return &FileConfig{
		FilePath:    filePath,
		BackupCount: 3,
	}
}

// FileStore keeps the snapshot as one indented JSON document on disk.
type FileStore struct {
	mu           sync.Mutex
	config       *FileConfig
	lastChecksum string
	closed       bool
}

var _ Backend = (*FileStore)(nil)

// NewFileStore creates a FileStore, creating the parent directory and an
// empty document when the file does not exist yet.
func NewFileStore(config *FileConfig) (*FileStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	fs := &FileStore{config: config}

	if _, err := os.Stat(config.FilePath); os.IsNotExist(err) {
		if err := fs.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("failed to create empty JSON file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check file existence: %w", err)
	}

	return fs, nil
}

// Load reads and validates the snapshot document.
func (fs *FileStore) Load(ctx context.Context) (Snapshot, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(fs.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	snap := Snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	if snap == nil {
		snap = Snapshot{}
	}

	fs.lastChecksum = checksum(data)
	return snap, nil
}

// Save writes the snapshot atomically. Unchanged snapshots are skipped.
func (fs *FileStore) Save(ctx context.Context, snap Snapshot) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return ErrClosed
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	sum := checksum(data)
	if sum == fs.lastChecksum {
		return nil
	}

	if fs.config.BackupCount > 0 {
		if err := fs.createBackup(); err != nil {
			log.Warn().Err(err).Str("file", fs.config.FilePath).Msg("failed to create backup")
		}
	}

	if err := fs.writeFileAtomic(data); err != nil {
		return err
	}

	if err := fs.verifyFile(sum); err != nil {
		return fmt.Errorf("file verification failed: %w", err)
	}

	fs.lastChecksum = sum
	return nil
}

// Close marks the store closed. Further Load/Save calls fail with ErrClosed.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

// writeFileAtomic writes to a temporary file, syncs it and renames it over
// the target.
func (fs *FileStore) writeFileAtomic(data []byte) error {
	tmpFile := fs.config.FilePath + ".tmp"

	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tmpFile, fs.config.FilePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (fs *FileStore) verifyFile(expected string) error {
	actual, err := os.ReadFile(fs.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read file for verification: %w", err)
	}
	if checksum(actual) != expected {
		return fmt.Errorf("file checksum mismatch")
	}
	return nil
}

// createBackup copies the current file to a timestamped backup and prunes
// old backups beyond BackupCount.
func (fs *FileStore) createBackup() error {
	if _, err := os.Stat(fs.config.FilePath); os.IsNotExist(err) {
		return nil
	}

	backupFile := fmt.Sprintf("%s.backup.%s", fs.config.FilePath, time.Now().Format("20060102_150405"))

	src, err := os.Open(fs.config.FilePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	fs.cleanupOldBackups()
	return nil
}

func (fs *FileStore) cleanupOldBackups() {
	matches, err := filepath.Glob(fs.config.FilePath + ".backup.*")
	if err != nil || len(matches) <= fs.config.BackupCount {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	files := make([]fileInfo, 0, len(matches))
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil {
			files = append(files, fileInfo{match, info.ModTime()})
		}
	}

	// oldest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for i := 0; i < len(files)-fs.config.BackupCount; i++ {
		os.Remove(files[i].path)
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
