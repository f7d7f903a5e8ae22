package service

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/mdouchement/clouddrive/internal/storage"
)

// A FileDownloader serves the content of a catalog file.
type FileDownloader struct {
	storage storage.Backend
	file    *model.File
}

// NewFileDownloader returns a new FileDownloader.
func NewFileDownloader(storage storage.Backend, file *model.File) *FileDownloader {
	return &FileDownloader{
		storage: storage,
		file:    file,
	}
}

// A Download is the byte span to send to the client.
type Download struct {
	io.Reader
	closer io.Closer

	Size    int64
	Start   int64
	End     int64
	Partial bool
}

// Close releases the underlying file.
func (d *Download) Close() error {
	return d.closer.Close()
}

// Length returns the number of bytes of the span.
func (d *Download) Length() int64 {
	if d.Size == 0 {
		return 0
	}
	return d.End - d.Start + 1
}

// ContentRange returns the Content-Range header value of a partial download.
func (d *Download) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", d.Start, d.End, d.Size)
}

// Open resolves the physical file and the span requested by the Range header value.
// An empty rangeHeader selects the whole file.
func (s *FileDownloader) Open(rangeHeader string) (*Download, error) {
	if !s.storage.Exist(s.file.Filepath) {
		return nil, notFound("file not found on disk")
	}

	content, err := s.storage.Reader(s.file.Filepath)
	if err != nil {
		return nil, storageError("FileDownloader open", err)
	}

	info, err := content.Stat()
	if err != nil {
		content.Close()
		return nil, storageError("FileDownloader stat", err)
	}

	d := &Download{
		Reader: content,
		closer: content,
		Size:   info.Size(),
		End:    info.Size() - 1,
	}
	if rangeHeader == "" {
		downloadsTotal.WithLabelValues("full").Inc()
		downloadBytesTotal.Add(float64(d.Length()))
		return d, nil
	}

	d.Start, d.End, err = ParseRange(rangeHeader, d.Size)
	if err != nil {
		content.Close()
		return nil, err
	}
	d.Partial = true
	d.Reader = io.NewSectionReader(content, d.Start, d.Length())

	downloadsTotal.WithLabelValues("partial").Inc()
	downloadBytesTotal.Add(float64(d.Length()))
	return d, nil
}

// Mimetype returns the content type of the file.
func (s *FileDownloader) Mimetype() string {
	return model.MimetypeOrDefault(s.file.Mimetype)
}

// ETag returns the entity tag of the file.
func (s *FileDownloader) ETag() string {
	return fmt.Sprintf(`"file-%d"`, s.file.ID)
}

// ContentDisposition returns the attachment header value suggesting the original name.
func (s *FileDownloader) ContentDisposition() string {
	name := strings.ReplaceAll(url.QueryEscape(s.file.OriginalName), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, name, name)
}

// ParseRange parses a single `bytes=` range against a file of the given size
// and returns the inclusive span. Both bounds must lie in [0, size).
func ParseRange(header string, size int64) (start, end int64, err error) {
	ranges, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(ranges, ",") {
		return 0, 0, ErrRangeNotSatisfiable
	}

	first, last, ok := strings.Cut(strings.TrimSpace(ranges), "-")
	if !ok {
		return 0, 0, ErrRangeNotSatisfiable
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	switch {
	case first == "" && last == "":
		return 0, 0, ErrRangeNotSatisfiable
	case first == "":
		// Suffix: the last N bytes.
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 || n > size {
			return 0, 0, ErrRangeNotSatisfiable
		}
		start, end = size-n, size-1
	default:
		start, err = strconv.ParseInt(first, 10, 64)
		if err != nil {
			return 0, 0, ErrRangeNotSatisfiable
		}

		end = size - 1
		if last != "" {
			end, err = strconv.ParseInt(last, 10, 64)
			if err != nil {
				return 0, 0, ErrRangeNotSatisfiable
			}
		}
	}

	if start < 0 || start >= size || end < 0 || end >= size || start > end {
		return 0, 0, ErrRangeNotSatisfiable
	}
	return start, end, nil
}
