package firemon

import (
	"context"
	"fmt"
	"strings"
)

// Object is a Record bound to the client and collection URL it came from.
// It remembers its initial state so local edits can be listed with Diff.
type Object struct {
	client   *Client
	url      string
	data     Record
	initial  Record
	readOnly map[string]bool
}

// NewObject binds data to the collection at url.
func NewObject(c *Client, url string, data Record) *Object {
	if data == nil {
		data = Record{}
	}
	return &Object{
		client:   c,
		url:      strings.TrimRight(url, "/"),
		data:     data,
		initial:  data.Clone(),
		readOnly: map[string]bool{},
	}
}

// Client returns the client the object was loaded with.
func (o *Object) Client() *Client { return o.client }

// Data returns the current field values.
func (o *Object) Data() Record { return o.data }

// ID returns the "id" field.
func (o *Object) ID() int { return o.data.ID() }

// Name returns the display name.
func (o *Object) Name() string { return o.data.Name() }

func (o *Object) String() string { return o.data.Name() }

// CollectionURL is the URL of the endpoint the object belongs to.
func (o *Object) CollectionURL() string { return o.url }

// URL is the URL of the object itself.
func (o *Object) URL() string {
	return fmt.Sprintf("%s/%d", o.url, o.ID())
}

// Get returns a field value.
func (o *Object) Get(key string) any { return o.data[key] }

// Set changes a field locally. Call Save to send the change.
func (o *Object) Set(key string, value any) {
	o.data[key] = value
}

// SetReadOnly marks keys that Serialize leaves out.
func (o *Object) SetReadOnly(keys ...string) {
	for _, k := range keys {
		o.readOnly[k] = true
	}
}

// Diff returns the fields that were added or changed since the object was
// loaded or last saved.
func (o *Object) Diff() Record {
	diff := Record{}
	for k, v := range o.data {
		old, ok := o.initial[k]
		if !ok || !valuesEqual(old, v) {
			diff[k] = v
		}
	}
	return diff
}

// Serialize returns the fields that may be written back to the server.
func (o *Object) Serialize() Record {
	out := Record{}
	for k, v := range o.data.Clone() {
		if !o.readOnly[k] {
			out[k] = v
		}
	}
	return out
}

// Request creates a request for a sub-resource of the object.
func (o *Object) Request(key string, opts ...RequestOption) *Request {
	if key != "" {
		opts = append([]RequestOption{WithKey(key)}, opts...)
	}
	return o.client.NewRequest(o.URL(), opts...)
}

// Save sends the serialized object with PUT. Nothing is sent when there
// are no local changes.
func (o *Object) Save(ctx context.Context) error {
	if len(o.Diff()) == 0 {
		o.client.log.Debug("no changes to save", "url", o.URL())
		return nil
	}
	return o.Update(ctx, o.Serialize())
}

// Update PUTs data to the object URL and refreshes the local copy.
func (o *Object) Update(ctx context.Context, data Record, opts ...RequestOption) error {
	resp, err := o.client.NewRequest(o.URL(), opts...).Put(ctx, JSONBody(data))
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", o.URL(), err)
	}
	if resp.IsJSON() {
		if rec, err := resp.Record(); err == nil && len(rec) > 0 {
			o.reset(rec)
			return nil
		}
	}
	for k, v := range data {
		o.data[k] = v
	}
	o.initial = o.data.Clone()
	return nil
}

// Delete removes the object.
func (o *Object) Delete(ctx context.Context, opts ...RequestOption) error {
	if err := o.client.NewRequest(o.URL(), opts...).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", o.URL(), err)
	}
	return nil
}

// Reload replaces the local copy with the server state.
func (o *Object) Reload(ctx context.Context) error {
	rec, err := o.client.NewRequest(o.URL()).Record(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", o.URL(), err)
	}
	o.reset(rec)
	return nil
}

func (o *Object) reset(rec Record) {
	o.data = rec
	o.initial = rec.Clone()
}
