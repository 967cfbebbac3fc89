package dsclient

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var ErrNoServerURL = errors.New("dsclient: server url missing")

// APIError is the error body every endpoint returns.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok && err.Message != "" {
			err.Status = resp.StatusCode
			return fmt.Errorf("%s %w", operation, err)
		}
		return fmt.Errorf("api error: %s %s", operation, resp.Status)
	}

	return nil
}
