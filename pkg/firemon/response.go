package firemon

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the raw response body.
	Body []byte
}

// Empty reports whether the response has no body.
func (r *Response) Empty() bool {
	return len(r.Body) == 0
}

// Text returns the body transcoded to UTF-8.
func (r *Response) Text() []byte {
	return toUTF8(r.Body, r.Header.Get("Content-Type"))
}

// IsJSON reports whether the body is valid JSON.
func (r *Response) IsJSON() bool {
	return !r.Empty() && json.Valid(r.Text())
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if r.Empty() {
		return fmt.Errorf("failed to decode response: empty body")
	}
	if err := json.Unmarshal(r.Text(), v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Value returns the decoded JSON body. A body that is not JSON is returned
// as raw bytes, and an empty body as true.
func (r *Response) Value() (any, error) {
	if r.Empty() {
		return true, nil
	}
	if !r.IsJSON() {
		return r.Body, nil
	}
	var v any
	if err := r.JSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Record decodes a JSON object body.
func (r *Response) Record() (Record, error) {
	var rec Record
	if err := r.JSON(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Records decodes a JSON array body, or the "results" of a paged body.
func (r *Response) Records() ([]Record, error) {
	v, err := r.Value()
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		if results, ok := obj["results"]; ok {
			return toRecords(results)
		}
	}
	return toRecords(v)
}
