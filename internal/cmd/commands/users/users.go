package users

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage Security Manager users"
}

func (c *Command) Help() string {
	return `Usage: fmctl users <subcommand> [options] [args]

  This command groups subcommands for the users of the working domain.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command
}

func (c *ListCommand) Synopsis() string {
	return "List users"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl users list [options]

  Lists the users of the working domain, system and disabled users
  included.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	return c.Command.Flags("users list")
}

func (c *ListCommand) Run(args []string) int {
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
	all, err := securitymanager.New(client).Users().All(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing users: %v", err))
		return 1
	}

	table := &base.Table{Header: []string{"ID", "USERNAME", "NAME", "EMAIL", "ENABLED"}}
	recs := make([]firemon.Record, 0, len(all))
	for _, u := range all {
		d := u.Data()
		name := d.Str("firstName") + " " + d.Str("lastName")
		table.Append(u.ID(), u.Username(), name, d.Str("email"), d.Bool("enabled"))
		recs = append(recs, d)
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
