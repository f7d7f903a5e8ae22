package webserver

import (
	"net/http"

	"github.com/mdouchement/clouddrive/internal/webserver/service"
	"github.com/mdouchement/clouddrive/internal/webserver/weberror"
	"github.com/pkg/errors"
)

// failure translates a service error into its rendered form.
func failure(err error) error {
	var missing *service.MissingChunkError

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return weberror.New(http.StatusBadRequest, err.Error())
	case errors.As(err, &missing):
		return weberror.New(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return weberror.New(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRangeNotSatisfiable):
		return weberror.New(http.StatusRequestedRangeNotSatisfiable, err.Error())
	case errors.Is(err, service.ErrMergeInProgress):
		return weberror.New(http.StatusConflict, err.Error())
	}
	// Storage details stay in the logs.
	return weberror.Wrap(http.StatusInternalServerError, "storage error", err)
}
