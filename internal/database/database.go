package database

import (
	"github.com/mdouchement/clouddrive/internal/config"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/pkg/errors"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool

		FileInteraction
	}

	// A FileInteraction defines all the methods used to interact with a file record.
	FileInteraction interface {
		// CreateFile inserts the record and assigns its ID and UploadDate.
		CreateFile(f *model.File) error
		// ListFiles returns all the records, most recent first.
		ListFiles() ([]*model.File, error)
		FindFile(id int) (*model.File, error)
		DeleteFile(id int) error
	}
)

// Open opens the database of the given driver.
func Open(driver, path string) (Client, error) {
	switch driver {
	case config.DriverStorm:
		return StormOpen(path)
	case config.DriverSQLite:
		return SQLiteOpen(path)
	}
	return nil, errors.Errorf("unsupported database driver %q", driver)
}

// Init initializes the indexes or the schema of the database.
func Init(driver, path string) error {
	switch driver {
	case config.DriverStorm:
		return StormInit(path)
	case config.DriverSQLite:
		c, err := SQLiteOpen(path)
		if err != nil {
			return err
		}
		return c.Close()
	}
	return errors.Errorf("unsupported database driver %q", driver)
}
