package webapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// statusFor maps a domain error onto an HTTP status. Unresolved elements and
// alloys are the caller's data problem on writes but plain misses on reads.
func statusFor(err error, method string) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnknownElement), errors.Is(err, apperr.ErrUnknownAlloy):
		if method == http.MethodGet || method == http.MethodDelete {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrUnknownPart):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicatePartCode), errors.Is(err, apperr.ErrDuplicateElement), errors.Is(err, apperr.ErrReferenceInUse):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrDivisionByZero), errors.Is(err, apperr.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders errors returned by handlers as ErrorResponse.
// Store failures are logged and reported without their details.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   ErrorResponse
		he     *echo.HTTPError
	)

	switch {
	case errors.As(err, &he):
		status = he.Code
		body = ErrorResponse{Error: "request_error", Message: fmt.Sprintf("%v", he.Message)}
		if status == http.StatusBadRequest {
			body.Error = apperr.Kind(apperr.ErrValidation)
		}
	default:
		status = statusFor(err, c.Request().Method)
		body = ErrorResponse{Error: apperr.Kind(err), Message: err.Error(), Missing: apperr.Missing(err)}
		if status == http.StatusInternalServerError {
			clog.UsingCtx("api").Errorf("%s %s failed: %s", c.Request().Method, c.Path(), err)
			body.Message = "service error"
		}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}

	if writeErr != nil {
		clog.UsingCtx("api").Errorf("Unable to write error response: %s", writeErr)
	}
}
