// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what a run did to the target file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // Content was rewritten
	StatusUnchanged            // Nothing needed rewriting
	StatusPreview              // Changes computed but not written (dry run)
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// 💾 FileManager handles all file system operations on the target
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) (string, error)
	Checksum(ctx context.Context, path string) (string, error)
	Lock(ctx context.Context, path string) (*Lease, error)
}

// 🔧 Manager implements FileManager relative to a base directory
type Manager struct {
	baseDir string
}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a new file manager rooted at baseDir
func New(baseDir string) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
	}
}

// 🔒 getAbsPath returns the absolute path for a path relative to the base directory
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 calculateChecksum generates a SHA-256 hash of the content
func calculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ChecksumBytes returns the checksum Checksum would report for content
func ChecksumBytes(content []byte) string {
	return calculateChecksum(content)
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("read file")
	return content, nil
}

func (m *Manager) Checksum(ctx context.Context, path string) (string, error) {
	content, err := m.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	return calculateChecksum(content), nil
}

// WriteFileAtomic writes content to a temporary file next to path and renames it over
// path. The original file mode is kept. The temporary file is removed on every failure.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	mode := os.FileMode(0644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking file: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(temp.Name()) }()

	if _, err := temp.Write(content); err != nil {
		_ = temp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := temp.Chmod(mode); err != nil {
		_ = temp.Close()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(temp.Name(), absPath); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}

// BackupFile copies path to path.bak and returns the backup path
func (m *Manager) BackupFile(ctx context.Context, path string) (string, error) {
	absPath := m.getAbsPath(path)
	backupPath := absPath + ".bak"

	if err := copyFile(absPath, backupPath); err != nil {
		return "", errors.Errorf("creating backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("backed up file")
	return backupPath, nil
}

// Helper functions

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source file info: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return destination.Close()
}
