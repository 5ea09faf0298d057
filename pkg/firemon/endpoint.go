package firemon

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Item is anything an Endpoint can return.
type Item interface {
	Data() Record
}

// Filter selects items by field value.
type Filter map[string]any

// FilterStyle is how an Endpoint applies a Filter.
type FilterStyle int

const (
	// FilterSearch sends a single "search" parameter.
	FilterSearch FilterStyle = iota
	// FilterKeyValue sends one "filter=key=value" parameter per key.
	FilterKeyValue
	// FilterLocal fetches every item and matches fields locally.
	FilterLocal
)

// Endpoint is a collection of API objects at a single URL.
type Endpoint[T Item] struct {
	client    *Client
	url       string
	style     FilterStyle
	params    url.Values
	lookupKey string
	wrap      func(*Object) T
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*endpointOptions)

type endpointOptions struct {
	style     FilterStyle
	params    url.Values
	lookupKey string
}

// EndpointStyle sets how filters are applied. Default: FilterSearch.
func EndpointStyle(s FilterStyle) EndpointOption {
	return func(o *endpointOptions) { o.style = s }
}

// EndpointParams adds query parameters to every list request.
func EndpointParams(v url.Values) EndpointOption {
	return func(o *endpointOptions) {
		for k, vals := range v {
			o.params[k] = append(o.params[k], vals...)
		}
	}
}

// EndpointLookupKey sets the field Get matches for FilterLocal endpoints.
// Default: "id".
func EndpointLookupKey(key string) EndpointOption {
	return func(o *endpointOptions) { o.lookupKey = key }
}

// NewEndpoint creates an endpoint at rawURL. wrap turns each loaded
// object into the endpoint item type.
func NewEndpoint[T Item](c *Client, rawURL string, wrap func(*Object) T, opts ...EndpointOption) *Endpoint[T] {
	o := &endpointOptions{
		style:     FilterSearch,
		params:    url.Values{},
		lookupKey: "id",
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Endpoint[T]{
		client:    c,
		url:       strings.TrimRight(rawURL, "/"),
		style:     o.style,
		params:    o.params,
		lookupKey: o.lookupKey,
		wrap:      wrap,
	}
}

// URL returns the endpoint URL.
func (e *Endpoint[T]) URL() string { return e.url }

// Client returns the endpoint client.
func (e *Endpoint[T]) Client() *Client { return e.client }

// Wrap turns a record loaded from this endpoint into an item.
func (e *Endpoint[T]) Wrap(rec Record) T {
	return e.wrap(NewObject(e.client, e.url, rec))
}

// WrapAll turns records into items.
func (e *Endpoint[T]) WrapAll(recs []Record) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		out = append(out, e.Wrap(rec))
	}
	return out
}

// All returns every item of the endpoint.
func (e *Endpoint[T]) All(ctx context.Context) ([]T, error) {
	recs, err := e.client.NewRequest(e.url, WithFilters(e.params)).List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", e.url, err)
	}
	return e.WrapAll(recs), nil
}

// Get returns a single item by key. Local endpoints match the lookup key
// against every item; others GET <url>/<key>.
func (e *Endpoint[T]) Get(ctx context.Context, key any) (T, error) {
	var zero T
	if e.style == FilterLocal {
		items, err := e.Filter(ctx, Filter{e.lookupKey: key})
		if err != nil {
			return zero, err
		}
		return ExactlyOne(items, fmt.Sprintf("%s=%v", e.lookupKey, key))
	}

	rec, err := e.client.NewRequest(e.url, WithKey(fmt.Sprint(key))).Record(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to get %s/%v: %w", e.url, key, err)
	}
	return e.Wrap(rec), nil
}

// Find returns the only item matching filter. It fails with ErrNotFound
// when nothing matches and with ErrMultipleResults when several do.
func (e *Endpoint[T]) Find(ctx context.Context, filter Filter) (T, error) {
	items, err := e.Filter(ctx, filter)
	if err != nil {
		var zero T
		return zero, err
	}
	return ExactlyOne(items, fmt.Sprint(map[string]any(filter)))
}

// Filter returns the items matching filter.
func (e *Endpoint[T]) Filter(ctx context.Context, filter Filter) ([]T, error) {
	if len(filter) == 0 {
		return nil, fmt.Errorf("%w: filter needs at least one field, use All instead", ErrInvalidArgument)
	}

	switch e.style {
	case FilterLocal:
		items, err := e.All(ctx)
		if err != nil {
			return nil, err
		}
		var out []T
		for _, item := range items {
			if item.Data().Matches(filter) {
				out = append(out, item)
			}
		}
		return out, nil

	case FilterKeyValue:
		params := url.Values{}
		for _, k := range sortedKeys(filter) {
			params.Add("filter", fmt.Sprintf("%s=%v", k, filter[k]))
		}
		return e.list(ctx, params)

	default:
		k := sortedKeys(filter)[0]
		return e.Search(ctx, fmt.Sprint(filter[k]))
	}
}

// Search returns the items the server matches against term.
func (e *Endpoint[T]) Search(ctx context.Context, term string) ([]T, error) {
	return e.list(ctx, url.Values{"search": {term}})
}

func (e *Endpoint[T]) list(ctx context.Context, params url.Values) ([]T, error) {
	req := e.client.NewRequest(e.url, WithFilters(e.params), WithFilters(params))
	recs, err := req.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s: %w", e.url, err)
	}
	return e.WrapAll(recs), nil
}

// Create POSTs data and returns the new item. When the server answers with
// only an id the item is fetched.
func (e *Endpoint[T]) Create(ctx context.Context, data Record, params url.Values) (T, error) {
	var zero T
	resp, err := e.client.NewRequest(e.url, WithFilters(params)).Post(ctx, JSONBody(data))
	if err != nil {
		return zero, fmt.Errorf("failed to create in %s: %w", e.url, err)
	}

	v, err := resp.Value()
	if err != nil {
		return zero, err
	}
	switch t := v.(type) {
	case map[string]any:
		rec := Record(t)
		if len(rec) == 1 && rec.Has("id") && e.style != FilterLocal {
			return e.Get(ctx, rec.ID())
		}
		return e.Wrap(rec), nil
	case float64:
		return e.Get(ctx, int(t))
	}
	return zero, fmt.Errorf("unexpected create response from %s: %T", e.url, v)
}

// Count returns the number of items. Local endpoints count All.
func (e *Endpoint[T]) Count(ctx context.Context) (int, error) {
	if e.style == FilterLocal {
		items, err := e.All(ctx)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	}
	n, err := e.client.NewRequest(e.url, WithFilters(e.params)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", e.url, err)
	}
	return n, nil
}

// ExactlyOne returns the only element of items, ErrNotFound when empty and
// ErrMultipleResults when there are several.
func ExactlyOne[T any](items []T, what string) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, fmt.Errorf("%w: %s", ErrNotFound, what)
	case 1:
		return items[0], nil
	}
	return zero, fmt.Errorf("%w: %d items match %s, use Filter or All instead",
		ErrMultipleResults, len(items), what)
}

func sortedKeys(f Filter) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
