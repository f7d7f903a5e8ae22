package storage

import (
	"io"
	fspkg "io/fs"
	"time"
)

type (
	// Backend is the interface that wraps the basic file operations.
	Backend interface {
		// Name returns the name of the backend implementation.
		Name() string
		// Workspace returns the absolute storage root.
		Workspace() string

		// WriteChunk stores the chunk at index for the given upload, replacing any previous one.
		WriteChunk(upload string, index int, r io.Reader) (int64, error)
		// ChunkReader returns a ReadCloser of the staged chunk.
		ChunkReader(upload string, index int) (io.ReadCloser, error)
		// RemoveChunk deletes a staged chunk.
		RemoveChunk(upload string, index int) error
		// RemoveUpload deletes the staging directory of the upload.
		RemoveUpload(upload string) error
		// Uploads lists the staging directories.
		Uploads() ([]Upload, error)

		// Create creates exclusively a new file named name under the storage root.
		Create(name string) (Blob, error)
		// Reader opens the file located at path.
		Reader(path string) (Content, error)
		// Stat returns the file information of path.
		Stat(path string) (fspkg.FileInfo, error)
		// Exist checks the existence of path.
		Exist(path string) bool
		// Remove deletes the given file.
		Remove(path string) error

		// Cleanup cleans useless artifacts in storage.
		Cleanup() error
	}

	// A Blob is a file being written.
	Blob interface {
		io.WriteCloser
		// Name returns the absolute path of the blob.
		Name() string
		Sync() error
	}

	// A Content is a readable and seekable stored file.
	Content interface {
		io.ReadSeekCloser
		io.ReaderAt
		Stat() (fspkg.FileInfo, error)
	}

	// An Upload is a staging directory.
	Upload struct {
		ID         string
		ModifiedAt time.Time
	}
)
