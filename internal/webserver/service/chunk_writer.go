package service

import (
	"io"

	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/clouddrive/internal/xpath"
)

// A ChunkWriter stages the chunks of an upload.
type ChunkWriter struct {
	storage storage.Backend
}

// NewChunkWriter returns a new ChunkWriter.
func NewChunkWriter(storage storage.Backend) *ChunkWriter {
	return &ChunkWriter{
		storage: storage,
	}
}

// Write stores the chunk at index for the upload, replacing any previous write at that index.
func (s *ChunkWriter) Write(upload string, index int, chunk io.Reader) (int64, error) {
	if chunk == nil {
		return 0, invalid("missing chunk")
	}
	if !xpath.Segment(upload) {
		return 0, invalid("invalid upload identifier %q", upload)
	}
	if index < 0 {
		return 0, invalid("invalid chunk index %d", index)
	}

	n, err := s.storage.WriteChunk(upload, index, chunk)
	if err != nil {
		return n, storageError("ChunkWriter", err)
	}

	chunksWrittenTotal.Inc()
	chunkBytesTotal.Add(float64(n))
	return n, nil
}
