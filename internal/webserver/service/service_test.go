package service

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (logger.Logger, database.Client, storage.Backend) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.StormOpen(filepath.Join(t.TempDir(), "clouddrive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return logger.WrapLogrus(log), db, storage.NewFileSystem(t.TempDir())
}

func random(t *testing.T, n int) []byte {
	t.Helper()

	p := make([]byte, n)
	_, err := rand.Read(p)
	require.NoError(t, err)
	return p
}

func TestChunkWriterValidation(t *testing.T) {
	_, _, store := setup(t)
	w := NewChunkWriter(store)

	_, err := w.Write("upload", 0, nil)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = w.Write("", 0, bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = w.Write("../escape", 0, bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = w.Write("upload", -1, bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	n, err := w.Write("upload", 0, bytes.NewReader([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMergeConcatenatesInIndexOrder(t *testing.T) {
	log, db, store := setup(t)
	w := NewChunkWriter(store)

	chunks := [][]byte{random(t, 1000), random(t, 1), random(t, 4096), random(t, 17)}

	// Written out of order and concurrently.
	var wg sync.WaitGroup
	for _, i := range []int{3, 1, 0, 2} {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := w.Write("1700000000000-data.bin", i, bytes.NewReader(chunks[i]))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	file, err := NewMerger(log, db, store).Merge(MergeRequest{
		Upload:      "1700000000000-data.bin",
		Filename:    "data.bin",
		TotalChunks: len(chunks),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(file.Filepath)
	require.NoError(t, err)
	assert.Equal(t, bytes.Join(chunks, nil), data)

	assert.Positive(t, file.ID)
	assert.Equal(t, "data.bin", file.OriginalName)
	assert.Equal(t, filepath.Base(file.Filepath), file.Filename)
	assert.Regexp(t, `^\d+-data\.bin$`, file.Filename)
	assert.Equal(t, int64(len(data)), file.Filesize)
	assert.Equal(t, "application/octet-stream", file.Mimetype)

	uploads, err := store.Uploads()
	require.NoError(t, err)
	assert.Empty(t, uploads, "staging directory removed")

	files, err := db.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMergeTwelveMegabytes(t *testing.T) {
	log, db, store := setup(t)
	w := NewChunkWriter(store)

	const chunkSize = 5 << 20
	content := random(t, 12<<20)
	for i := 0; i*chunkSize < len(content); i++ {
		end := min((i+1)*chunkSize, len(content))
		_, err := w.Write("big", i, bytes.NewReader(content[i*chunkSize:end]))
		require.NoError(t, err)
	}

	file, err := NewMerger(log, db, store).Merge(MergeRequest{
		Upload:      "big",
		Filename:    "big.iso",
		TotalChunks: 3,
		Mimetype:    "application/x-iso9660-image",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12582912), file.Filesize)
	assert.Equal(t, "application/x-iso9660-image", file.Mimetype)
}

func TestMergeMissingChunk(t *testing.T) {
	log, db, store := setup(t)
	w := NewChunkWriter(store)

	for _, i := range []int{0, 1, 3} {
		_, err := w.Write("holes", i, bytes.NewReader(random(t, 10)))
		require.NoError(t, err)
	}

	_, err := NewMerger(log, db, store).Merge(MergeRequest{
		Upload:      "holes",
		Filename:    "holes.bin",
		TotalChunks: 4,
	})

	var missing *MissingChunkError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 2, missing.Index)

	files, err := db.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files, "no record created")

	entries, err := os.ReadDir(store.Workspace())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.True(t, entry.IsDir(), "partial output %s removed", entry.Name())
	}

	// Chunks before the hole were consumed.
	_, err = store.ChunkReader("holes", 0)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = store.ChunkReader("holes", 3)
	assert.NoError(t, err)
}

func TestMergeValidation(t *testing.T) {
	log, db, store := setup(t)
	m := NewMerger(log, db, store)

	for _, req := range []MergeRequest{
		{Filename: "a", TotalChunks: 1},
		{Upload: "u", TotalChunks: 1},
		{Upload: "u", Filename: "a"},
		{Upload: "u", Filename: "a", TotalChunks: -2},
		{Upload: "..", Filename: "a", TotalChunks: 1},
	} {
		_, err := m.Merge(req)
		assert.True(t, errors.Is(err, ErrInvalidRequest), "%+v", req)
	}
}

func TestMergeInProgress(t *testing.T) {
	log, db, store := setup(t)
	m := NewMerger(log, db, store)

	require.True(t, m.locker.TryLock("busy"))
	_, err := m.Merge(MergeRequest{Upload: "busy", Filename: "a", TotalChunks: 1})
	assert.Equal(t, ErrMergeInProgress, err)

	m.locker.Unlock("busy")
	_, err = m.Merge(MergeRequest{Upload: "busy", Filename: "a", TotalChunks: 1})
	var missing *MissingChunkError
	assert.True(t, errors.As(err, &missing))
}

func TestFileUploader(t *testing.T) {
	_, db, store := setup(t)

	file, err := NewFileUploader(db, store).Upload("notes.txt", "", bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)

	assert.Regexp(t, `^file-\d+-notes\.txt$`, file.Filename)
	assert.Equal(t, int64(11), file.Filesize)
	assert.Equal(t, "application/octet-stream", file.Mimetype)

	_, err = NewFileUploader(db, store).Upload("", "", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestFileDestroyer(t *testing.T) {
	log, db, store := setup(t)

	file, err := NewFileUploader(db, store).Upload("notes.txt", "text/plain", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)

	d := NewFileDestroyer(log, db, store)
	assert.True(t, errors.Is(d.Destroy(0), ErrInvalidRequest))
	assert.True(t, errors.Is(d.Destroy(file.ID+1), ErrNotFound))

	require.NoError(t, d.Destroy(file.ID))
	assert.NoFileExists(t, file.Filepath)
	assert.True(t, errors.Is(d.Destroy(file.ID), ErrNotFound))
}

type failingRemove struct {
	storage.Backend
}

func (failingRemove) Remove(string) error {
	return errors.New("permission denied")
}

func TestFileDestroyerKeepsDeletionOnDiskFailure(t *testing.T) {
	log, db, store := setup(t)

	file, err := NewFileUploader(db, store).Upload("notes.txt", "text/plain", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)

	require.NoError(t, NewFileDestroyer(log, db, failingRemove{store}).Destroy(file.ID))

	files, err := db.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.FileExists(t, file.Filepath)
}
