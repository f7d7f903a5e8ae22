package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/clouddrive/internal/config"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, driver string) Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clouddrive.db")
	require.NoError(t, Init(driver, path))

	db, err := Open(driver, path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func drivers() []string {
	return []string{config.DriverStorm, config.DriverSQLite}
}

func newFile(name string) *model.File {
	return &model.File{
		Filename:     "1700000000000-" + name,
		OriginalName: name,
		Filepath:     "/storage/1700000000000-" + name,
		Filesize:     5 << 30,
		Mimetype:     "text/plain",
	}
}

func TestListFilesEmpty(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			db := open(t, driver)

			files, err := db.ListFiles()
			require.NoError(t, err)
			assert.NotNil(t, files)
			assert.Empty(t, files)
		})
	}
}

func TestCreateAndFindFile(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			db := open(t, driver)

			f1 := newFile("a.txt")
			require.NoError(t, db.CreateFile(f1))
			f2 := newFile("b.txt")
			require.NoError(t, db.CreateFile(f2))

			assert.Positive(t, f1.ID)
			assert.Greater(t, f2.ID, f1.ID)
			assert.False(t, f1.UploadDate.IsZero())

			found, err := db.FindFile(f2.ID)
			require.NoError(t, err)
			assert.Equal(t, "b.txt", found.OriginalName)
			assert.Equal(t, int64(5<<30), found.Filesize)
			assert.WithinDuration(t, f2.UploadDate, found.UploadDate, time.Millisecond)

			_, err = db.FindFile(f2.ID + 42)
			assert.True(t, db.IsNotFound(err))
		})
	}
}

func TestListFilesMostRecentFirst(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			db := open(t, driver)

			for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
				require.NoError(t, db.CreateFile(newFile(name)))
				time.Sleep(2 * time.Millisecond)
			}

			files, err := db.ListFiles()
			require.NoError(t, err)
			require.Len(t, files, 3)
			assert.Equal(t, "3.txt", files[0].OriginalName)
			assert.Equal(t, "2.txt", files[1].OriginalName)
			assert.Equal(t, "1.txt", files[2].OriginalName)
		})
	}
}

func TestDeleteFile(t *testing.T) {
	for _, driver := range drivers() {
		t.Run(driver, func(t *testing.T) {
			db := open(t, driver)

			f := newFile("a.txt")
			require.NoError(t, db.CreateFile(f))
			require.NoError(t, db.DeleteFile(f.ID))

			_, err := db.FindFile(f.ID)
			assert.True(t, db.IsNotFound(err))

			err = db.DeleteFile(f.ID)
			assert.True(t, db.IsNotFound(err))

			files, err := db.ListFiles()
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestCachedClient(t *testing.T) {
	db := NewCached(open(t, config.DriverStorm), 16, time.Minute)

	f := newFile("cached.txt")
	require.NoError(t, db.CreateFile(f))

	found, err := db.FindFile(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, found.ID)

	require.NoError(t, db.DeleteFile(f.ID))
	_, err = db.FindFile(f.ID)
	assert.True(t, db.IsNotFound(err))
}

func TestCachedClientDisabled(t *testing.T) {
	db := open(t, config.DriverStorm)
	assert.Equal(t, db, NewCached(db, 0, time.Minute))
}
