package service

import (
	"os"

	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

// A FileDestroyer removes a file from the catalog then from storage.
type FileDestroyer struct {
	logger   logger.Logger
	database database.Client
	storage  storage.Backend
}

// NewFileDestroyer returns a new FileDestroyer.
func NewFileDestroyer(log logger.Logger, database database.Client, storage storage.Backend) *FileDestroyer {
	return &FileDestroyer{
		logger:   log,
		database: database,
		storage:  storage,
	}
}

// Destroy deletes the record id. The physical file removal is best effort:
// its failure is logged and the record stays deleted.
func (s *FileDestroyer) Destroy(id int) error {
	if id <= 0 {
		return invalid("invalid file ID")
	}

	file, err := s.database.FindFile(id)
	if err != nil {
		if s.database.IsNotFound(err) {
			return notFound("file not found")
		}
		return storageError("FileDestroyer find", err)
	}

	if err = s.database.DeleteFile(id); err != nil {
		if s.database.IsNotFound(err) {
			return notFound("file not found")
		}
		return storageError("FileDestroyer record", err)
	}

	err = s.storage.Remove(file.Filepath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("path", file.Filepath).Warnf("failed to delete physical file: %s", err)
	}
	return nil
}
