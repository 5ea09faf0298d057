package firemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks.
	ErrAuthentication  = errors.New("firemon: authentication failed")
	ErrForbidden       = errors.New("firemon: access forbidden")
	ErrNotFound        = errors.New("firemon: resource not found")
	ErrMultipleResults = errors.New("firemon: more than one result")
	ErrInvalidArgument = errors.New("firemon: invalid argument")
	ErrNotSupported    = errors.New("firemon: operation not supported")
	ErrVersion         = errors.New("firemon: unsupported version")
	ErrDevice          = errors.New("firemon: device error")
	ErrDevicePack      = errors.New("firemon: device pack error")
	ErrLicense         = errors.New("firemon: license error")
	ErrControlPanel    = errors.New("firemon: control panel error")
)

// RequestError is returned for any response with a non-2xx status. It is
// never retried.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string

	// JSON is the decoded error body, nil when the body was not JSON.
	JSON any
}

// newRequestError builds a RequestError from a finished response.
func newRequestError(method, rawURL string, resp *http.Response, body []byte) *RequestError {
	e := &RequestError{
		Method:     method,
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Status:     reason(resp),
		Body:       string(body),
	}
	var v any
	if len(body) > 0 && json.Unmarshal(body, &v) == nil {
		e.JSON = v
	}
	return e
}

func (e *RequestError) Error() string {
	if e.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("The requested url: %s could not be found.", e.URL)
	}
	if e.JSON != nil {
		details, _ := json.Marshal(e.JSON)
		return fmt.Sprintf("The request failed with code %d %s: %s", e.StatusCode, e.Status, details)
	}
	return fmt.Sprintf("The request failed with code %d %s but more specific details were not returned in json.",
		e.StatusCode, e.Status)
}

// Unwrap maps the status code onto a sentinel.
func (e *RequestError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// IsRequestError reports whether err is, or wraps, a RequestError with one
// of the given status codes. With no codes any RequestError matches.
func IsRequestError(err error, codes ...int) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if re.StatusCode == c {
			return true
		}
	}
	return false
}

// reason returns the reason phrase of a response, for example "Not Found".
func reason(resp *http.Response) string {
	if _, after, ok := strings.Cut(resp.Status, " "); ok && after != "" {
		return after
	}
	return http.StatusText(resp.StatusCode)
}
