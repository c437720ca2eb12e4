package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoBackup is returned by Storage.Load when nothing has been saved yet.
var ErrNoBackup = errors.New("backup: no backup found")

// Storage persists encoded snapshots. It deals only in already-encoded
// bytes and knows nothing about the dataset inside them.
type Storage interface {
	// Name identifies the storage in logs.
	Name() string
	// Save stores data, replacing any previous snapshot.
	Save(ctx context.Context, data []byte) error
	// Load returns the stored snapshot, or ErrNoBackup.
	Load(ctx context.Context) ([]byte, error)
}

// DefaultFileName is the snapshot file name used by FileStorage.
const DefaultFileName = "journal.tjbk"

// FileStorage keeps the snapshot in a single file in a directory.
// Writes are atomic: a reader sees either the old or the new snapshot.
type FileStorage struct {
	path   string
	sealer *Sealer
}

// NewFileStorage stores snapshots under dir. sealer may be nil.
func NewFileStorage(dir string, sealer *Sealer) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, DefaultFileName), sealer: sealer}
}

// Name implements Storage.
func (s *FileStorage) Name() string { return "file:" + s.path }

// Path returns the snapshot file path.
func (s *FileStorage) Path() string { return s.path }

// Save implements Storage.
func (s *FileStorage) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(data)
		if err != nil {
			return err
		}
		data = sealed
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("backup.FileStorage.Save: %w", err)
	}
	err := atomicWriteFile(s.path, ".journal-*.tmp", 0o600, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("backup.FileStorage.Save: %w", err)
	}
	return nil
}

// Load implements Storage.
func (s *FileStorage) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("backup.FileStorage.Load: %w", err)
	}
	if s.sealer != nil {
		return s.sealer.Open(data)
	}
	return data, nil
}

// atomicWriteFile writes through a temp file in the target directory,
// syncs it, and renames it over targetPath.
func atomicWriteFile(targetPath, tempPattern string, perm os.FileMode, write func(*os.File) error) error {
	tempFile, err := os.CreateTemp(filepath.Dir(targetPath), tempPattern)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := tempFile.Chmod(perm); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := write(tempFile); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return fmt.Errorf("rename temporary file: %w", err)
	}
	success = true
	return nil
}
