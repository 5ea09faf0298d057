package ui

import (
	"fmt"

	"github.com/pkg/browser"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Web UI paths of the FireMon apps.
var appPaths = map[string]string{
	firemon.AppSecurityManager:        "/securitymanager/",
	firemon.AppPolicyPlanner:          "/policyplanner/",
	firemon.AppPolicyOptimizer:        "/policyoptimizer/",
	firemon.AppGlobalPolicyController: "/gpc/",
}

type Command struct {
	*base.Command

	flagApp string
}

func (c *Command) Synopsis() string {
	return "Open the FireMon web UI"
}

func (c *Command) Help() string {
	return `Usage: fmctl ui [options]

  Opens the web UI of the selected profile's server in the default browser.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.Command.Flags("ui")
	f.StringVar(
		&c.flagApp, "app", firemon.AppSecurityManager,
		"App to open: securitymanager, policyplanner, policyoptimizer or globalpolicycontroller",
	)
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	path, ok := appPaths[c.flagApp]
	if !ok {
		c.UI.Error(fmt.Sprintf("unknown app: %s", c.flagApp))
		return 1
	}

	p, err := c.Profile()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	cfg := &firemon.Config{Host: p.Host}
	if cfg.Host == "" {
		c.UI.Error("profile has no host (set host or FIREMON_HOST)")
		return 1
	}
	url := cfg.BaseURL() + path

	open := c.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	c.UI.Info(fmt.Sprintf("Opening %s", url))
	if err := open(url); err != nil {
		c.UI.Error(fmt.Sprintf("error opening browser: %v", err))
		return 1
	}
	return 0
}
