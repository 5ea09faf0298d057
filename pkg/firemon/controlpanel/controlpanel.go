// Package controlpanel wraps the FireMon Control Panel API, the appliance
// administration service that listens on its own port.
package controlpanel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// ControlPanel is a logged in Control Panel session. It shares the HTTP
// client, and so the cookie jar, of the FireMon client it was made from.
type ControlPanel struct {
	client *firemon.Client
	base   string
	log    hclog.Logger
}

// New logs in to the Control Panel of the host c is connected to.
func New(ctx context.Context, c *firemon.Client) (*ControlPanel, error) {
	cp := &ControlPanel{
		client: c,
		base:   c.Config().ControlPanelBaseURL(),
		log:    c.Logger().Named("controlpanel"),
	}
	if err := cp.login(ctx); err != nil {
		return nil, err
	}
	return cp, nil
}

func (cp *ControlPanel) login(ctx context.Context) error {
	form := url.Values{
		"username": {cp.client.Username()},
		"password": {cp.client.Config().Password},
	}
	_, err := cp.Request("login").Post(ctx, firemon.FormBody(form))
	if err != nil {
		return fmt.Errorf("%w: login to %s failed: %w", firemon.ErrControlPanel, cp.base, err)
	}
	cp.log.Debug("logged in", "url", cp.base)
	return nil
}

// URL returns the Control Panel API root.
func (cp *ControlPanel) URL() string { return cp.base }

// Request creates a request relative to the API root.
func (cp *ControlPanel) Request(key string, opts ...firemon.RequestOption) *firemon.Request {
	return cp.client.NewRequest(cp.base, append([]firemon.RequestOption{firemon.WithKey(key)}, opts...)...)
}

// Cleanup returns the database cleanup endpoint.
func (cp *ControlPanel) Cleanup() *Cleanup {
	return &Cleanup{cp: cp}
}

// Config returns the appliance configuration endpoint.
func (cp *ControlPanel) Config() *Config {
	return &Config{cp: cp}
}
