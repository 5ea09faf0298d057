package firemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Request builds and sends calls to a single FireMon API URL.
type Request struct {
	client  *Client
	base    string
	key     string
	filters url.Values
	headers http.Header
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithKey appends key to the base URL.
func WithKey(key string) RequestOption {
	return func(r *Request) {
		r.key = strings.TrimLeft(key, "/")
	}
}

// WithFilters adds query parameters sent with every call of the request.
func WithFilters(v url.Values) RequestOption {
	return func(r *Request) {
		for k, vals := range v {
			for _, val := range vals {
				r.filters.Add(k, val)
			}
		}
	}
}

// WithParam sets a single query parameter.
func WithParam(key string, value any) RequestOption {
	return func(r *Request) {
		r.filters.Set(key, fmt.Sprint(value))
	}
}

// WithHeader sets a header. Headers set here override the defaults.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.headers.Set(key, value)
	}
}

// WithTrailingSlash ensures the base URL ends in a slash.
func WithTrailingSlash() RequestOption {
	return func(r *Request) {
		if !strings.HasSuffix(r.base, "/") {
			r.base += "/"
		}
	}
}

// NewRequest creates a request against base. A trailing slash on base is
// dropped unless WithTrailingSlash is given.
func (c *Client) NewRequest(base string, opts ...RequestOption) *Request {
	r := &Request{
		client:  c,
		base:    strings.TrimRight(base, "/"),
		filters: url.Values{},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the request URL without query parameters.
func (r *Request) URL() string {
	if r.key == "" {
		return r.base
	}
	return strings.TrimRight(r.base, "/") + "/" + r.key
}

// Get makes a GET request and follows paged results. Without params a
// pageSize parameter is added. Paged responses return the combined
// results as []any in page order; anything else is returned as decoded.
func (r *Request) Get(ctx context.Context, params url.Values) (any, error) {
	if params == nil {
		params = url.Values{"pageSize": {strconv.Itoa(r.client.cfg.PageSize)}}
	}

	resp, err := r.do(ctx, http.MethodGet, params, nil)
	if err != nil {
		return nil, err
	}
	v, err := resp.Value()
	if err != nil {
		return nil, err
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	results, ok := obj["results"].([]any)
	if !ok {
		if _, present := obj["results"]; present && obj["results"] == nil {
			return []any{}, nil
		}
		return v, nil
	}

	total := toInt(obj["total"])
	if total == 0 {
		return results, nil
	}
	pageSize := toInt(obj["pageSize"])
	if pageSize <= 0 {
		pageSize, _ = strconv.Atoi(params.Get("pageSize"))
	}
	if pageSize <= 0 {
		pageSize = len(results)
	}
	if pageSize <= 0 {
		return results, nil
	}

	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	if pages <= 1 {
		return results, nil
	}

	rest, err := r.fetchPages(ctx, params, pageSize, pages)
	if err != nil {
		return nil, err
	}
	return append(results, rest...), nil
}

// fetchPages fetches pages 1..pages-1 concurrently and returns their
// results in page order.
func (r *Request) fetchPages(ctx context.Context, params url.Values, pageSize, pages int) ([]any, error) {
	r.client.log.Debug("fetching remaining pages",
		"url", r.URL(),
		"pages", pages,
		"page_size", pageSize,
		"concurrency", r.client.cfg.Concurrency,
	)

	byPage := make([][]any, pages)
	var (
		mu   sync.Mutex
		merr *multierror.Error
	)

	var g errgroup.Group
	g.SetLimit(r.client.cfg.Concurrency)
	for page := 1; page < pages; page++ {
		g.Go(func() error {
			p := cloneValues(params)
			p.Set("page", strconv.Itoa(page))
			p.Set("pageSize", strconv.Itoa(pageSize))

			resp, err := r.do(ctx, http.MethodGet, p, nil)
			if err == nil {
				var body struct {
					Results []any `json:"results"`
				}
				if err = resp.JSON(&body); err == nil {
					byPage[page] = body.Results
					return nil
				}
			}

			mu.Lock()
			merr = multierror.Append(merr, fmt.Errorf("page %d: %w", page, err))
			mu.Unlock()
			return err
		})
	}
	_ = g.Wait()

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	var out []any
	for _, results := range byPage[1:] {
		out = append(out, results...)
	}
	return out, nil
}

// List makes a paged GET and returns every result as a Record.
func (r *Request) List(ctx context.Context, params url.Values) ([]Record, error) {
	v, err := r.Get(ctx, params)
	if err != nil {
		return nil, err
	}
	return toRecords(v)
}

// Record makes a GET and returns the single object in the response.
func (r *Request) Record(ctx context.Context, params url.Values) (Record, error) {
	if params == nil {
		params = url.Values{}
	}
	resp, err := r.do(ctx, http.MethodGet, params, nil)
	if err != nil {
		return nil, err
	}
	return resp.Record()
}

// Decode makes a GET without paging and decodes the JSON body into v.
func (r *Request) Decode(ctx context.Context, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	resp, err := r.do(ctx, http.MethodGet, params, nil)
	if err != nil {
		return err
	}
	return resp.JSON(v)
}

// Count returns the "total" field of the response.
func (r *Request) Count(ctx context.Context) (int, error) {
	resp, err := r.do(ctx, http.MethodGet, url.Values{}, nil)
	if err != nil {
		return 0, err
	}
	rec, err := resp.Record()
	if err != nil {
		return 0, err
	}
	if !rec.Has("total") {
		return 0, fmt.Errorf("response from %s has no total", r.URL())
	}
	return rec.Int("total"), nil
}

// Content makes a GET without any paging parameters and returns the raw
// body. Use it for exports and other data downloads.
func (r *Request) Content(ctx context.Context) ([]byte, error) {
	resp, err := r.do(ctx, http.MethodGet, url.Values{}, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Post makes a POST request.
func (r *Request) Post(ctx context.Context, body Body) (*Response, error) {
	return r.do(ctx, http.MethodPost, url.Values{}, body)
}

// Put makes a PUT request.
func (r *Request) Put(ctx context.Context, body Body) (*Response, error) {
	return r.do(ctx, http.MethodPut, url.Values{}, body)
}

// Delete makes a DELETE request.
func (r *Request) Delete(ctx context.Context) error {
	_, err := r.do(ctx, http.MethodDelete, url.Values{}, nil)
	return err
}

// do sends the request, retrying transport failures with exponential
// backoff. Responses with a non-2xx status are returned as *RequestError
// and are not retried.
func (r *Request) do(ctx context.Context, method string, params url.Values, body Body) (*Response, error) {
	query := cloneValues(r.filters)
	for k, vals := range params {
		query[k] = append([]string(nil), vals...)
	}

	var (
		resp    *Response
		attempt int
	)
	op := func() error {
		attempt++
		if err := r.client.wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		res, err := r.send(ctx, method, query, body)
		if err != nil {
			var re *RequestError
			if errors.As(err, &re) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.client.log.Info("retrying request",
			"method", method,
			"url", r.URL(),
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, r.client.newBackOff(ctx), notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// send performs a single HTTP round trip.
func (r *Request) send(ctx context.Context, method string, query url.Values, body Body) (*Response, error) {
	target := r.URL()
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		payload, ct, err := body.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader, contentType = bytes.NewReader(payload), ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(r.client.cfg.Username, r.client.cfg.Password)
	req.Header.Set("User-Agent", r.client.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vals := range r.headers {
		req.Header[k] = vals
	}

	r.client.log.Debug("request", "method", method, "url", target)
	if body != nil {
		r.client.log.Trace("request body", "content_type", contentType, "body", body.String())
	}

	httpResp, err := r.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	r.client.log.Debug("response",
		"method", method,
		"url", target,
		"status", httpResp.StatusCode,
		"bytes", len(raw),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newRequestError(method, target, httpResp, toUTF8(raw, httpResp.Header.Get("Content-Type")))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func toRecords(v any) ([]Record, error) {
	switch t := v.(type) {
	case []any:
		out := make([]Record, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("result %d is %T, not an object", i, item)
			}
			out = append(out, Record(m))
		}
		return out, nil
	case map[string]any:
		return []Record{Record(t)}, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected response type %T", v)
}
