package scheduler

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controller(t *testing.T, ttl time.Duration) (Controller, storage.Backend) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := storage.NewFileSystem(t.TempDir())
	return Controller{
		Logger:        logger.WrapLogrus(log),
		Storage:       store,
		Specification: "@every 1h",
		StagingTTL:    ttl,
	}, store
}

func age(t *testing.T, store storage.Backend, upload string, d time.Duration) {
	old := time.Now().Add(-d)
	dir := filepath.Join(store.Workspace(), storage.StagingDirectory, upload)
	require.NoError(t, os.Chtimes(dir, old, old))
}

func TestSweep(t *testing.T) {
	c, store := controller(t, time.Hour)

	_, err := store.WriteChunk("abandoned", 0, strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.WriteChunk("active", 0, strings.NewReader("b"))
	require.NoError(t, err)
	age(t, store, "abandoned", 2*time.Hour)

	require.NoError(t, Sweep(c))

	uploads, err := store.Uploads()
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "active", uploads[0].ID)
}

func TestSweepDisabled(t *testing.T) {
	c, store := controller(t, 0)

	_, err := store.WriteChunk("abandoned", 0, strings.NewReader("a"))
	require.NoError(t, err)
	age(t, store, "abandoned", 48*time.Hour)

	require.NoError(t, Sweep(c))

	uploads, err := store.Uploads()
	require.NoError(t, err)
	assert.Len(t, uploads, 1)
}

func TestStart(t *testing.T) {
	c, _ := controller(t, 0)

	cron, err := Start(c)
	require.NoError(t, err)
	assert.Len(t, cron.Entries(), 1)
	<-cron.Stop().Done()

	c.Specification = "not a schedule"
	_, err = Start(c)
	assert.Error(t, err)
}
