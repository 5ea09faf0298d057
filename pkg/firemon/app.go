package firemon

import (
	"context"
	"errors"
	"fmt"
)

// App is a FireMon application such as Security Manager.
type App struct {
	client *Client
	name   string
}

// NewApp returns a handle for the named application.
func NewApp(c *Client, name string) *App {
	return &App{client: c, name: name}
}

// Name returns the application name.
func (a *App) Name() string { return a.name }

// Client returns the application client.
func (a *App) Client() *Client { return a.client }

// URL returns the application API root, for example
// https://host/securitymanager/api.
func (a *App) URL() string { return a.client.AppURL(a.name) }

// DomainURL returns the API root for the working domain. It follows
// Client.SetDomain.
func (a *App) DomainURL() string {
	return fmt.Sprintf("%s/domain/%d", a.URL(), a.client.DomainID())
}

// Request creates a request relative to the application URL.
func (a *App) Request(key string, opts ...RequestOption) *Request {
	return a.client.NewRequest(a.URL(), append([]RequestOption{WithKey(key)}, opts...)...)
}

// DomainRequest creates a request relative to the domain URL.
func (a *App) DomainRequest(key string, opts ...RequestOption) *Request {
	return a.client.NewRequest(a.DomainURL(), append([]RequestOption{WithKey(key)}, opts...)...)
}

// Siql runs a paged SIQL query of the given kind.
func (a *App) Siql(ctx context.Context, kind, query string) ([]Record, error) {
	recs, err := a.Request("siql/"+kind+"/paged-search", WithParam("q", query)).List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("siql %s query failed: %w", kind, err)
	}
	return recs, nil
}

func (a *App) String() string { return a.name }

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
