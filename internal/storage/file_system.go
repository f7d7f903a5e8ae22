package storage

import (
	"io"
	fspkg "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// StagingDirectory is the folder, relative to the workspace, holding the chunks.
const StagingDirectory = "chunks"

// CleanupGrace is the minimal age of an empty directory before Cleanup removes it.
const CleanupGrace = time.Minute

type fs struct {
	workspace string
}

// NewFileSystem returns a new File System backend.
func NewFileSystem(workspace string) Backend {
	if abs, err := filepath.Abs(workspace); err == nil {
		workspace = abs
	}

	return &fs{
		workspace: workspace,
	}
}

func (b *fs) Name() string {
	return "file_system"
}

func (b *fs) Workspace() string {
	return b.workspace
}

//
// Staging
//

func (b *fs) WriteChunk(upload string, index int, r io.Reader) (int64, error) {
	dir := b.staging(upload)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrap(err, "could not create staging directory")
	}

	// Written aside then renamed so concurrent writes of the same index never interleave.
	tmp, err := os.CreateTemp(dir, ".chunk-*")
	if err != nil {
		return 0, errors.Wrap(err, "could not create chunk")
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return n, errors.Wrap(err, "could not write chunk")
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return n, errors.Wrap(err, "could not write chunk")
	}

	if err = os.Rename(tmp.Name(), b.chunk(upload, index)); err != nil {
		os.Remove(tmp.Name())
		return n, errors.Wrap(err, "could not store chunk")
	}
	return n, nil
}

func (b *fs) ChunkReader(upload string, index int) (io.ReadCloser, error) {
	rc, err := os.Open(b.chunk(upload, index))
	if err != nil {
		return nil, errors.Wrap(err, "could not open chunk")
	}
	return rc, nil
}

func (b *fs) RemoveChunk(upload string, index int) error {
	err := os.Remove(b.chunk(upload, index))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "could not delete chunk")
	}
	return nil
}

func (b *fs) RemoveUpload(upload string) error {
	err := os.RemoveAll(b.staging(upload))
	return errors.Wrap(err, "could not delete staging directory")
}

func (b *fs) Uploads() ([]Upload, error) {
	entries, err := os.ReadDir(filepath.Join(b.workspace, StagingDirectory))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not list staging directories")
	}

	var uploads []Upload
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed in the meantime.
			continue
		}

		uploads = append(uploads, Upload{
			ID:         entry.Name(),
			ModifiedAt: info.ModTime(),
		})
	}

	return uploads, nil
}

//
// Final files
//

func (b *fs) Create(name string) (Blob, error) {
	if err := os.MkdirAll(b.workspace, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create storage directory")
	}

	f, err := os.OpenFile(filepath.Join(b.workspace, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "could not create file")
	}
	return f, nil
}

func (b *fs) Reader(path string) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open file")
	}
	return f, nil
}

func (b *fs) Stat(path string) (fspkg.FileInfo, error) {
	info, err := os.Stat(path)
	return info, errors.Wrap(err, "could not stat file")
}

func (b *fs) Exist(path string) bool {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir()
	}
	if os.IsNotExist(err) {
		return false
	}
	return true // ignoring error
}

func (b *fs) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return errors.Wrap(err, "could not delete file")
	}
	return nil
}

func (b *fs) Cleanup() error {
	// Find empty directories.
	//
	stats := map[string]int{}
	modtimes := map[string]time.Time{}
	err := filepath.Walk(b.workspace, func(path string, info fspkg.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			if path == b.workspace {
				return nil
			}
			stats[path] += 0
			modtimes[path] = info.ModTime()
			return nil
		}

		if strings.HasSuffix(path, ".DS_Store") {
			return nil
		}

		for dir := filepath.Dir(path); dir != b.workspace && strings.HasPrefix(dir, b.workspace); dir = filepath.Dir(dir) {
			stats[dir]++
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "cleanup")
	}

	// Remove empty directories.
	//
	for dirname, count := range stats {
		if count == 0 && time.Since(modtimes[dirname]) >= CleanupGrace {
			os.RemoveAll(dirname)
		}
	}
	return nil
}

func (b *fs) staging(upload string) string {
	return filepath.Join(b.workspace, StagingDirectory, upload)
}

func (b *fs) chunk(upload string, index int) string {
	return filepath.Join(b.staging(upload), strconv.Itoa(index))
}
