package service

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/clouddrive/internal/xpath"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

// A MergeRequest describes the upload to assemble.
type MergeRequest struct {
	Upload      string
	Filename    string
	TotalChunks int
	Mimetype    string
}

// A Merger assembles the staged chunks of an upload into a catalog file.
type Merger struct {
	logger   logger.Logger
	database database.Client
	storage  storage.Backend
	locker   *UploadLocker
	now      func() time.Time
}

// NewMerger returns a new Merger.
func NewMerger(log logger.Logger, database database.Client, storage storage.Backend) *Merger {
	return &Merger{
		logger:   log.WithPrefix("[merger]"),
		database: database,
		storage:  storage,
		locker:   NewUploadLocker(),
		now:      time.Now,
	}
}

// Merge concatenates chunks 0..TotalChunks-1 in order, consuming each of them,
// then records the resulting file.
func (s *Merger) Merge(req MergeRequest) (*model.File, error) {
	if req.Upload == "" || req.Filename == "" || req.TotalChunks == 0 {
		return nil, invalid("missing params")
	}
	if !xpath.Segment(req.Upload) {
		return nil, invalid("invalid upload identifier %q", req.Upload)
	}
	if req.TotalChunks < 0 {
		return nil, invalid("total chunks must be positive")
	}

	if !s.locker.TryLock(req.Upload) {
		return nil, ErrMergeInProgress
	}
	defer s.locker.Unlock(req.Upload)

	file, err := s.merge(req)
	if err != nil {
		mergesTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	mergesTotal.WithLabelValues("success").Inc()
	return file, nil
}

func (s *Merger) merge(req MergeRequest) (*model.File, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), xpath.Base(req.Filename))

	blob, err := s.storage.Create(name)
	if err != nil {
		return nil, storageError("Merger create", err)
	}

	for i := 0; i < req.TotalChunks; i++ {
		if err = s.consume(blob, req.Upload, i); err != nil {
			blob.Close()
			s.storage.Remove(blob.Name())
			return nil, err
		}
	}

	if err = blob.Sync(); err != nil {
		blob.Close()
		s.storage.Remove(blob.Name())
		return nil, storageError("Merger sync", err)
	}
	if err = blob.Close(); err != nil {
		s.storage.Remove(blob.Name())
		return nil, storageError("Merger close", err)
	}

	info, err := s.storage.Stat(blob.Name())
	if err != nil {
		return nil, storageError("Merger stat", err)
	}

	file := &model.File{
		Filename:     name,
		OriginalName: req.Filename,
		Filepath:     blob.Name(),
		Filesize:     info.Size(),
		Mimetype:     model.MimetypeOrDefault(req.Mimetype),
	}
	if err = s.database.CreateFile(file); err != nil {
		// The merged file stays on disk without record.
		s.logger.WithField("path", blob.Name()).Errorf("orphaned merged file: %s", err)
		return nil, storageError("Merger record", err)
	}

	if err = s.storage.RemoveUpload(req.Upload); err != nil {
		s.logger.WithField("upload", req.Upload).Warnf("could not remove staging directory: %s", err)
	}

	s.logger.Infof("merged %s (%d chunks, %d bytes) as #%d", req.Upload, req.TotalChunks, file.Filesize, file.ID)
	return file, nil
}

func (s *Merger) consume(w io.Writer, upload string, index int) error {
	r, err := s.storage.ChunkReader(upload, index)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &MissingChunkError{Index: index}
		}
		return storageError("Merger open chunk", err)
	}

	_, err = io.Copy(w, r)
	r.Close()
	if err != nil {
		return storageError("Merger append chunk", err)
	}

	if err = s.storage.RemoveChunk(upload, index); err != nil {
		return storageError("Merger remove chunk", err)
	}
	return nil
}
