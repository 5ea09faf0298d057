package controlpanel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Cleanup actions.
const (
	ActionAnalyze = "analyze"
	ActionClean   = "clean"
)

// Cleanup analyzes and purges old data from the FireMon database.
type Cleanup struct {
	cp *ControlPanel
}

// Profiles returns the available cleanup profiles.
func (c *Cleanup) Profiles(ctx context.Context) (any, error) {
	return c.cp.Request("cleanup/profiles").Get(ctx, url.Values{})
}

// Run starts a cleanup. action is ActionAnalyze or ActionClean; an empty
// profile uses the server default.
func (c *Cleanup) Run(ctx context.Context, action, profile string) (any, error) {
	if action != ActionAnalyze && action != ActionClean {
		return nil, fmt.Errorf("%w: action must be %q or %q, got %q",
			firemon.ErrControlPanel, ActionAnalyze, ActionClean, action)
	}
	var opts []firemon.RequestOption
	if profile != "" {
		opts = append(opts, firemon.WithParam("profile", profile))
	}
	resp, err := c.cp.Request("cleanup/cleanup/"+action, opts...).Post(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cleanup %s failed: %w", firemon.ErrControlPanel, action, err)
	}
	c.cp.log.Info("cleanup started", "action", action, "profile", profile)
	return resp.Value()
}
