package model

import "time"

// A File is the catalog entry of a complete, stored file.
type File struct {
	ID int `json:"id" storm:"id,increment"`

	// Filename is the storage-assigned name on disk.
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Filepath     string    `json:"filepath"`
	Filesize     int64     `json:"filesize"`
	Mimetype     string    `json:"mimetype"`
	UploadDate   time.Time `json:"upload_date" storm:"index"`
}

// DefaultMimetype is used when the client does not declare a content type.
const DefaultMimetype = "application/octet-stream"

// MimetypeOrDefault returns m or DefaultMimetype when m is empty.
func MimetypeOrDefault(m string) string {
	if m == "" {
		return DefaultMimetype
	}
	return m
}
