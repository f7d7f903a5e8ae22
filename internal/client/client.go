package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the size of the chunks sent to the server.
const DefaultChunkSize = 5 << 20

type (
	// A Client uploads, lists, downloads and deletes files of a clouddrive server.
	Client struct {
		BaseURL    string
		ChunkSize  int64
		HTTPClient *http.Client
		Logger     logger.Logger
	}

	// A File is a stored file as returned by the server.
	File struct {
		ID           int       `json:"id"`
		Filename     string    `json:"filename"`
		OriginalName string    `json:"originalName"`
		Filesize     string    `json:"filesize"`
		Mimetype     string    `json:"mimetype"`
		UploadDate   time.Time `json:"uploadDate"`
		Filepath     string    `json:"filepath,omitempty"`
	}

	// Progress describes the state of an upload after each acknowledged chunk.
	Progress struct {
		Filename    string
		Chunk       int
		TotalChunks int
		Sent        int64
		Size        int64
	}

	// ProgressFunc is called after each acknowledged chunk.
	// It may be called concurrently by UploadFiles.
	ProgressFunc func(Progress)

	// An APIError is a failure reported by the server.
	APIError struct {
		StatusCode int
		Message    string
	}

	response struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Error   string  `json:"error"`
		File    *File   `json:"file"`
		Files   []*File `json:"files"`
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// New returns a Client for the server located at baseURL.
func New(baseURL string, log logger.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		ChunkSize:  DefaultChunkSize,
		HTTPClient: http.DefaultClient,
		Logger:     log.WithPrefix("[client]"),
	}
}

// ChunkCount returns the number of chunks needed to send size bytes.
// An empty file is sent as one empty chunk.
func ChunkCount(size, chunkSize int64) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if size <= 0 {
		return 1
	}
	return int((size + chunkSize - 1) / chunkSize)
}

// UploadFiles uploads the given files, at most parallel at a time.
// Chunks of a single file are always sent sequentially.
func (c *Client) UploadFiles(ctx context.Context, paths []string, parallel int, progress ProgressFunc) ([]*File, error) {
	files := make([]*File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			file, err := c.UploadFile(ctx, path, progress)
			if err != nil {
				return errors.Wrapf(err, "upload %s", path)
			}
			files[i] = file
			return nil
		})
	}

	return files, g.Wait()
}

// UploadFile sends the file located at path chunk by chunk then asks the server to merge them.
func (c *Client) UploadFile(ctx context.Context, path string, progress ProgressFunc) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "could not stat file")
	}

	chunkSize := c.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	name := filepath.Base(path)
	upload := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.Must(uuid.NewV4()).String()[:8], name)
	total := ChunkCount(info.Size(), chunkSize)
	buf := make([]byte, chunkSize)

	var sent int64
	for index := 0; index < total; index++ {
		n, err := io.ReadFull(f, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, errors.Wrap(err, "could not read file")
		}

		if err = c.sendChunk(ctx, upload, index, buf[:n]); err != nil {
			return nil, errors.Wrapf(err, "chunk %d", index)
		}

		sent += int64(n)
		c.Logger.Debugf("%s: chunk %d/%d sent", name, index+1, total)
		if progress != nil {
			progress(Progress{
				Filename:    name,
				Chunk:       index + 1,
				TotalChunks: total,
				Sent:        sent,
				Size:        info.Size(),
			})
		}
	}

	mimetype := mime.TypeByExtension(filepath.Ext(name))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}

	payload, err := json.Marshal(map[string]interface{}{
		"fileId":      upload,
		"filename":    name,
		"totalChunks": total,
		"mimetype":    mimetype,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode completion")
	}

	req, err := c.request(ctx, http.MethodPost, "/upload-complete", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var r response
	if err = c.do(req, &r); err != nil {
		return nil, errors.Wrap(err, "could not complete upload")
	}
	if r.File == nil {
		return nil, errors.New("could not complete upload: no file in response")
	}

	c.Logger.Infof("%s uploaded as #%d", name, r.File.ID)
	return r.File, nil
}

func (c *Client) sendChunk(ctx context.Context, upload string, index int, chunk []byte) error {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if err := w.WriteField("fileId", upload); err != nil {
		return errors.Wrap(err, "could not write form")
	}
	if err := w.WriteField("chunkIndex", strconv.Itoa(index)); err != nil {
		return errors.Wrap(err, "could not write form")
	}
	part, err := w.CreateFormFile("chunk", "blob")
	if err != nil {
		return errors.Wrap(err, "could not write form")
	}
	if _, err = part.Write(chunk); err != nil {
		return errors.Wrap(err, "could not write form")
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "could not write form")
	}

	req, err := c.request(ctx, http.MethodPost, "/upload-chunk", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, nil)
}

// List returns the stored files, most recent first.
func (c *Client) List(ctx context.Context) ([]*File, error) {
	req, err := c.request(ctx, http.MethodGet, "/files", nil)
	if err != nil {
		return nil, err
	}

	var r response
	if err = c.do(req, &r); err != nil {
		return nil, errors.Wrap(err, "could not list files")
	}
	return r.Files, nil
}

// Delete removes the file identified by id.
func (c *Client) Delete(ctx context.Context, id int) error {
	req, err := c.request(ctx, http.MethodDelete, "/delete/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	return errors.Wrap(c.do(req, nil), "could not delete file")
}

// Download writes the content of the file identified by id into w.
func (c *Client) Download(ctx context.Context, id int, w io.Writer) (int64, error) {
	req, err := c.request(ctx, http.MethodGet, "/download/"+strconv.Itoa(id), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "could not download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, failure(resp)
	}

	n, err := io.Copy(w, resp.Body)
	return n, errors.Wrap(err, "could not download file")
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	return req, errors.Wrap(err, "could not build request")
}

func (c *Client) do(req *http.Request, v *response) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(resp)
	}

	if v == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "could not decode response")
}

func failure(resp *http.Response) error {
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil || r.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: r.Error}
}
