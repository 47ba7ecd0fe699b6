package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

type errorBody struct {
	Errors []validation.ErrorEntry `json:"ERRORS"`
}

// statusOf maps error kinds to HTTP status codes
func statusOf(err error) int {
	var (
		verr *validation.ValidationError
		serr *validation.SecurityError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &herr):
		return herr.Code
	case errors.Is(err, search.ErrMalformedFilter), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &serr):
		return http.StatusForbidden
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func bodyOf(err error, status int) errorBody {
	var d validation.Describer
	if errors.As(err, &d) {
		return errorBody{Errors: d.Entries()}
	}

	entry := validation.ErrorEntry{Desc: err.Error()}
	var mf *search.MalformedFilterError
	switch {
	case errors.As(err, &mf):
		entry.Code = "MALFORMED_FILTER"
	case status == http.StatusNotFound:
		entry.Code = validation.CodeMissingEntity
	case status == http.StatusInternalServerError:
		entry.Code = "INTERNAL"
		entry.Desc = http.StatusText(status)
	default:
		entry.Code = http.StatusText(status)
	}
	return errorBody{Errors: []validation.ErrorEntry{entry}}
}

func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		klog.Errorf("http: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	} else {
		klog.V(2).Infof("http: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, bodyOf(err, status))
	}
	if err != nil {
		klog.Errorf("http: failed to write error response: %v", err)
	}
}
