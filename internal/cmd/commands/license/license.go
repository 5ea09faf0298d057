package license

import (
	"fmt"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Show or load the FireMon license"
}

func (c *Command) Help() string {
	return `Usage: fmctl license <subcommand> [options] [args]

  This command groups subcommands for the server license.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ShowCommand struct {
	*base.Command
}

func (c *ShowCommand) Synopsis() string {
	return "Show the license"
}

func (c *ShowCommand) Help() string {
	return `Usage: fmctl license show [options]

  Shows the license of the working domain.` + c.Flags().Help()
}

func (c *ShowCommand) Flags() *base.FlagSet {
	return c.Command.Flags("license show")
}

func (c *ShowCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	lic, err := securitymanager.New(client).License().Get(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting license: %v", err))
		return 1
	}
	if err := c.Output(lic, base.RecordTable(lic)); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type LoadCommand struct {
	*base.Command
}

func (c *LoadCommand) Synopsis() string {
	return "Load a license file"
}

func (c *LoadCommand) Help() string {
	return `Usage: fmctl license load [options] <license file>

  Uploads a license file to the server.` + c.Flags().Help()
}

func (c *LoadCommand) Flags() *base.FlagSet {
	return c.Command.Flags("license load")
}

func (c *LoadCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one license file")
		return 1
	}
	lic, err := afero.ReadFile(c.FS, f.Arg(0))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading %s: %v", f.Arg(0), err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if err := securitymanager.New(client).License().Load(ctx, lic); err != nil {
		c.UI.Error(fmt.Sprintf("error loading license: %v", err))
		return 1
	}
	c.UI.Info("License loaded")
	return 0
}
