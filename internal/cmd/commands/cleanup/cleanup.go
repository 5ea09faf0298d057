package cleanup

import (
	"context"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon/controlpanel"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Analyze or purge old data with the Control Panel"
}

func (c *Command) Help() string {
	return `Usage: fmctl cleanup <subcommand> [options] [args]

  This command groups subcommands for the Control Panel database cleanup.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

func connect(ctx context.Context, c *base.Command) (*controlpanel.ControlPanel, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}
	return controlpanel.New(ctx, client)
}

type ProfilesCommand struct {
	*base.Command
}

func (c *ProfilesCommand) Synopsis() string {
	return "List cleanup profiles"
}

func (c *ProfilesCommand) Help() string {
	return `Usage: fmctl cleanup profiles [options]

  Lists the cleanup profiles of the Control Panel.` + c.Flags().Help()
}

func (c *ProfilesCommand) Flags() *base.FlagSet {
	return c.Command.Flags("cleanup profiles")
}

func (c *ProfilesCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	cp, err := connect(ctx, c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	profiles, err := cp.Cleanup().Profiles(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing cleanup profiles: %v", err))
		return 1
	}
	if err := c.Output(profiles, nil); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type RunCommand struct {
	*base.Command

	flagAction  string
	flagProfile string
}

func (c *RunCommand) Synopsis() string {
	return "Start a cleanup"
}

func (c *RunCommand) Help() string {
	return `Usage: fmctl cleanup run [options]

  Starts a cleanup. The analyze action reports what would be removed; the
  clean action removes it.` + c.Flags().Help()
}

func (c *RunCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("cleanup run")
	f.StringVar(
		&c.flagAction, "action", controlpanel.ActionAnalyze,
		"Cleanup action: analyze or clean",
	)
	f.StringVar(
		&c.flagProfile, "cleanup-profile", "",
		"Cleanup profile to apply (default: the server default)",
	)
	return f
}

func (c *RunCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	cp, err := connect(ctx, c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	result, err := cp.Cleanup().Run(ctx, c.flagAction, c.flagProfile)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Info(fmt.Sprintf("Cleanup %s started", c.flagAction))
	// An empty response body decodes to true.
	if _, ok := result.(bool); !ok && result != nil {
		if err := c.Output(result, nil); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
	}
	return 0
}
