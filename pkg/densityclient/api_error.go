package densityclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/materials-commons/partdensity/pkg/apperr"
)

var ErrDensityAPI = errors.New("density api")

// ErrorResponse is the JSON densityd responds with when a request fails.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// APIError is a failed call. It matches the apperr sentinel of the same kind,
// so errors.Is(err, apperr.ErrUnknownPart) works across the wire.
type APIError struct {
	StatusCode int
	Response   ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP Status: %d)- %s: %s", ErrDensityAPI, e.StatusCode, e.Response.Error, e.Response.Message)
}

func (e *APIError) Is(target error) bool {
	if target == ErrDensityAPI {
		return true
	}

	kind := apperr.Kind(target)
	return kind != "service_error" && kind == e.Response.Error
}

func toErrorFromResponse(resp *resty.Response) error {
	var errorResponse ErrorResponse
	if err := json.Unmarshal(resp.Body(), &errorResponse); err != nil {
		return errors.Join(ErrDensityAPI, fmt.Errorf("(HTTP Status: %d)- unable to parse json error response: %s", resp.StatusCode(), err))
	}

	return &APIError{StatusCode: resp.StatusCode(), Response: errorResponse}
}
