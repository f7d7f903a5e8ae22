package webserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clouddrive/internal/webserver/serializer"
	"github.com/mdouchement/clouddrive/internal/webserver/service"
	"github.com/mdouchement/clouddrive/internal/webserver/weberror"
)

type upload struct {
	writer *service.ChunkWriter
	merger *service.Merger
}

func (h *upload) Chunk(c echo.Context) error {
	c.Set("handler_method", "upload.Chunk")

	fh, err := c.FormFile("chunk")
	if err != nil {
		return weberror.New(http.StatusBadRequest, "invalid request")
	}
	fileID := c.FormValue("fileId")
	index, err := strconv.Atoi(c.FormValue("chunkIndex"))
	if fileID == "" || err != nil {
		return weberror.New(http.StatusBadRequest, "invalid request")
	}

	r, err := fh.Open()
	if err != nil {
		return weberror.New(http.StatusBadRequest, "invalid request")
	}
	defer r.Close()

	if _, err = h.writer.Write(fileID, index, r); err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
	})
}

type completion struct {
	FileID      string `json:"fileId"`
	Filename    string `json:"filename"`
	TotalChunks int    `json:"totalChunks"`
	Mimetype    string `json:"mimetype"`
}

func (h *upload) Complete(c echo.Context) error {
	c.Set("handler_method", "upload.Complete")

	var payload completion
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return weberror.New(http.StatusBadRequest, "missing params")
	}

	file, err := h.merger.Merge(service.MergeRequest{
		Upload:      payload.FileID,
		Filename:    payload.Filename,
		TotalChunks: payload.TotalChunks,
		Mimetype:    payload.Mimetype,
	})
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"file":    serializer.StoredFile(file),
	})
}
