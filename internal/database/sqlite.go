package database

import (
	"database/sql"
	"time"

	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	filename      TEXT NOT NULL,
	original_name TEXT NOT NULL,
	filepath      TEXT NOT NULL,
	filesize      INTEGER NOT NULL,
	mimetype      TEXT NOT NULL,
	upload_date   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_upload_date ON files(upload_date);
`

const sqliteColumns = `id, filename, original_name, filepath, filesize, mimetype, upload_date`

type sqlite struct {
	db *sql.DB
}

// SQLiteOpen opens a SQLite database and ensures its schema.
func SQLiteOpen(database string) (Client, error) {
	db, err := sql.Open("sqlite", database)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create schema")
	}

	return &sqlite{
		db: db,
	}, nil
}

func (c *sqlite) Close() error {
	return c.db.Close()
}

func (c *sqlite) IsNotFound(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

func (c *sqlite) CreateFile(f *model.File) error {
	f.UploadDate = time.Now().UTC()

	result, err := c.db.Exec(
		`INSERT INTO files (filename, original_name, filepath, filesize, mimetype, upload_date) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Filename, f.OriginalName, f.Filepath, f.Filesize, f.Mimetype, f.UploadDate,
	)
	if err != nil {
		return errors.Wrap(err, "could not save the file")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "could not get file id")
	}
	f.ID = int(id)
	return nil
}

func (c *sqlite) ListFiles() ([]*model.File, error) {
	rows, err := c.db.Query(`SELECT ` + sqliteColumns + ` FROM files ORDER BY upload_date DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "could not get all files")
	}
	defer rows.Close()

	files := make([]*model.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not scan file")
		}
		files = append(files, file)
	}

	return files, errors.Wrap(rows.Err(), "could not get all files")
}

func (c *sqlite) FindFile(id int) (*model.File, error) {
	row := c.db.QueryRow(`SELECT `+sqliteColumns+` FROM files WHERE id = ?`, id)
	file, err := scanFile(row)
	return file, errors.Wrap(err, "could not find file")
}

func (c *sqlite) DeleteFile(id int) error {
	result, err := c.db.Exec(`DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "could not delete file")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "could not delete file")
	}
	if n == 0 {
		return errors.Wrap(sql.ErrNoRows, "could not delete file")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.File, error) {
	var file model.File
	err := s.Scan(
		&file.ID,
		&file.Filename,
		&file.OriginalName,
		&file.Filepath,
		&file.Filesize,
		&file.Mimetype,
		&file.UploadDate,
	)
	return &file, err
}
