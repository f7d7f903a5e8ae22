package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(json.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	err = db.Init(&model.File{})
	return errors.Wrap(err, "could not init file index")
}

// StormReIndex rebuilds the Storm indexes.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	err = db.ReIndex(&model.File{})
	return errors.Wrap(err, "could not ReIndex files")
}

// StormOpen opens a Storm database.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

func (c *strm) Close() error {
	return c.db.Close()
}

func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

//
// File
//

func (c *strm) CreateFile(f *model.File) error {
	f.ID = 0
	f.UploadDate = time.Now().UTC()
	return errors.Wrap(c.db.Save(f), "could not save the file")
}

func (c *strm) ListFiles() ([]*model.File, error) {
	files := make([]*model.File, 0)
	err := c.db.Select().OrderBy("UploadDate", "ID").Reverse().Find(&files)
	if err == storm.ErrNotFound {
		return files, nil
	}
	return files, errors.Wrap(err, "could not get all files")
}

func (c *strm) FindFile(id int) (*model.File, error) {
	var file model.File
	err := c.db.One("ID", id, &file)
	return &file, errors.Wrap(err, "could not find file")
}

func (c *strm) DeleteFile(id int) error {
	err := c.db.Select(q.Eq("ID", id)).Delete(&model.File{})
	return errors.Wrap(err, "could not delete file")
}
