package serializer

import (
	"strconv"

	"github.com/mdouchement/clouddrive/internal/model"
)

// Files returns the serialized form of the given models.
func Files(files []*model.File) []map[string]interface{} {
	sl := make([]map[string]interface{}, 0, len(files))

	for _, file := range files {
		sl = append(sl, File(file))
	}

	return sl
}

// File returns the serialized form of the given model.
// The size is a decimal string so that JavaScript clients do not lose precision.
func File(file *model.File) map[string]interface{} {
	return map[string]interface{}{
		"id":           file.ID,
		"filename":     file.Filename,
		"originalName": file.OriginalName,
		"filesize":     strconv.FormatInt(file.Filesize, 10),
		"mimetype":     file.Mimetype,
		"uploadDate":   file.UploadDate,
	}
}

// StoredFile returns the serialized form of a freshly stored model, including its location.
func StoredFile(file *model.File) map[string]interface{} {
	m := File(file)
	m["filepath"] = file.Filepath
	return m
}
