package version

import (
	"fmt"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/internal/version"
)

type Command struct {
	*base.Command

	flagServer bool
}

func (c *Command) Synopsis() string {
	return "Print the fmctl version"
}

func (c *Command) Help() string {
	return `Usage: fmctl version [options]

  Prints the fmctl version and, with -server, the version of the FireMon
  server of the selected profile.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.Command.Flags("version")
	f.BoolVar(
		&c.flagServer, "server", false,
		"Also print the FireMon server version",
	)
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("fmctl v%s", version.Version))
	if !c.flagServer {
		return 0
	}

	ctx, cancel := c.Context()
	defer cancel()
	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(fmt.Sprintf("FireMon %s at %s", client.Version(), client.Host()))
	return 0
}
