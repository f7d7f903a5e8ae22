package webserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/model"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/clouddrive/internal/webserver/serializer"
	"github.com/mdouchement/clouddrive/internal/webserver/service"
	"github.com/mdouchement/clouddrive/internal/webserver/weberror"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

type file struct {
	logger   logger.Logger
	db       database.Client
	storage  storage.Backend
	uploader *service.FileUploader
}

func (h *file) List(c echo.Context) error {
	c.Set("handler_method", "file.List")

	files, err := h.db.ListFiles()
	if err != nil {
		return weberror.Wrap(http.StatusInternalServerError, "failed to fetch files", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"files":   serializer.Files(files),
	})
}

func (h *file) Upload(c echo.Context) error {
	c.Set("handler_method", "file.Upload")

	fh, err := c.FormFile("file")
	if err != nil {
		return weberror.New(http.StatusBadRequest, "no file uploaded")
	}

	r, err := fh.Open()
	if err != nil {
		return weberror.New(http.StatusBadRequest, "no file uploaded")
	}
	defer r.Close()

	file, err := h.uploader.Upload(fh.Filename, fh.Header.Get(echo.HeaderContentType), r)
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "File uploaded successfully",
		"file":    serializer.StoredFile(file),
	})
}

func (h *file) Download(c echo.Context) error {
	c.Set("handler_method", "file.Download")

	file, err := h.load(c.Param("id"))
	if err != nil {
		return err
	}

	downloader := service.NewFileDownloader(h.storage, file)
	header := c.Response().Header()
	header.Set("Accept-Ranges", "bytes")
	header.Set("Etag", downloader.ETag())

	if !h.storage.Exist(file.Filepath) {
		return weberror.New(http.StatusNotFound, "file not found on disk")
	}

	rangeHeader := c.Request().Header.Get("Range")
	if rangeHeader == "" && c.Request().Header.Get("If-None-Match") == downloader.ETag() {
		return c.NoContent(http.StatusNotModified)
	}

	d, err := downloader.Open(rangeHeader)
	if errors.Is(err, service.ErrRangeNotSatisfiable) {
		header.Set("Content-Range", "bytes */"+strconv.FormatInt(file.Filesize, 10))
	}
	if err != nil {
		return failure(err)
	}
	defer d.Close()

	status := http.StatusOK
	if d.Partial {
		status = http.StatusPartialContent
		header.Set("Content-Range", d.ContentRange())
		header.Set("Cache-Control", "no-cache")
	}
	header.Set(echo.HeaderContentDisposition, downloader.ContentDisposition())
	header.Set(echo.HeaderContentLength, strconv.FormatInt(d.Length(), 10))
	return c.Stream(status, downloader.Mimetype(), d)
}

func (h *file) Delete(c echo.Context) error {
	c.Set("handler_method", "file.Delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return weberror.New(http.StatusBadRequest, "invalid file ID")
	}

	err = service.NewFileDestroyer(h.logger, h.db, h.storage).Destroy(id)
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}

func (h *file) load(param string) (*model.File, error) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		return nil, weberror.New(http.StatusBadRequest, "invalid file ID")
	}

	file, err := h.db.FindFile(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, weberror.New(http.StatusNotFound, "file not found")
		}
		return nil, weberror.Wrap(http.StatusInternalServerError, "storage error", err)
	}
	return file, nil
}
