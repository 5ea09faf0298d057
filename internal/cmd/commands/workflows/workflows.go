package workflows

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/policyplanner"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Inspect Policy Planner workflows"
}

func (c *Command) Help() string {
	return `Usage: fmctl workflows <subcommand> [options] [args]

  This command groups subcommands for Policy Planner workflows.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command
}

func (c *ListCommand) Synopsis() string {
	return "List workflows"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl workflows list [options]

  Lists the Policy Planner workflows of the working domain.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	return c.Command.Flags("workflows list")
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
	all, err := policyplanner.New(client).Workflows().All(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing workflows: %v", err))
		return 1
	}

	table := &base.Table{Header: []string{"ID", "NAME", "ENABLED", "DESCRIPTION"}}
	recs := make([]firemon.Record, 0, len(all))
	for _, w := range all {
		d := w.Data()
		table.Append(w.ID(), w.Name(), d.Bool("enabled"), d.Str("description"))
		recs = append(recs, d)
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type PacketsCommand struct {
	*base.Command

	flagQuery string
}

func (c *PacketsCommand) Synopsis() string {
	return "List the packets of a workflow"
}

func (c *PacketsCommand) Help() string {
	return `Usage: fmctl workflows packets [options] <workflow id>

  Lists the packets (tickets) of a workflow.` + c.Flags().Help()
}

func (c *PacketsCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("workflows packets")
	f.StringVar(
		&c.flagQuery, "query", "",
		"SIQL ticket condition, for example status=OPEN (default: every packet)",
	)
	return f
}

func (c *PacketsCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one workflow id")
		return 1
	}
	id, err := base.ParseID("workflow", f.Arg(0))
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	packets := policyplanner.New(client).Packets(id)

	var list []*policyplanner.Packet
	if c.flagQuery != "" {
		list, err = packets.Filter(ctx, c.flagQuery)
	} else {
		list, err = packets.All(ctx)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing packets: %v", err))
		return 1
	}

	table := &base.Table{Header: []string{"ID", "STATUS", "CURRENT TASK", "LAST MODIFIED"}}
	recs := make([]firemon.Record, 0, len(list))
	for _, p := range list {
		d := p.Data()
		table.Append(p.ID(), d.Str("status"), d.Map("currentTask").Name(), d.Str("lastModifiedDate"))
		recs = append(recs, d)
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
