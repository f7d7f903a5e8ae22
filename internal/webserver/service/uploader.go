package service

import (
	"fmt"
	"io"
	"time"

	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/clouddrive/internal/xpath"
)

// A FileUploader stores a file sent in a single request.
type FileUploader struct {
	database database.Client
	storage  storage.Backend
	now      func() time.Time
}

// NewFileUploader returns a new FileUploader.
func NewFileUploader(database database.Client, storage storage.Backend) *FileUploader {
	return &FileUploader{
		database: database,
		storage:  storage,
		now:      time.Now,
	}
}

// Upload streams r to the storage and records it.
func (s *FileUploader) Upload(filename, mimetype string, r io.Reader) (*model.File, error) {
	if r == nil || filename == "" {
		return nil, invalid("no file uploaded")
	}

	name := fmt.Sprintf("file-%d-%s", s.now().UnixMilli(), xpath.Base(filename))

	blob, err := s.storage.Create(name)
	if err != nil {
		return nil, storageError("FileUploader create", err)
	}

	_, err = io.Copy(blob, r)
	if err == nil {
		err = blob.Sync()
	}
	if cerr := blob.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.storage.Remove(blob.Name())
		return nil, storageError("FileUploader write", err)
	}

	info, err := s.storage.Stat(blob.Name())
	if err != nil {
		return nil, storageError("FileUploader stat", err)
	}

	file := &model.File{
		Filename:     name,
		OriginalName: filename,
		Filepath:     blob.Name(),
		Filesize:     info.Size(),
		Mimetype:     model.MimetypeOrDefault(mimetype),
	}
	if err = s.database.CreateFile(file); err != nil {
		s.storage.Remove(blob.Name())
		return nil, storageError("FileUploader record", err)
	}

	uploadsTotal.Inc()
	return file, nil
}
