package revisions

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/devices"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Inspect device revisions"
}

func (c *Command) Help() string {
	return `Usage: fmctl revisions <subcommand> [options] [args]

  This command groups subcommands for device configuration revisions.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command

	flagDevice string
	flagLatest bool
}

func (c *ListCommand) Synopsis() string {
	return "List revisions"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl revisions list [options]

  Lists the revisions of a device, or of every device in the domain.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("revisions list")
	f.StringVar(
		&c.flagDevice, "device", "",
		"Device id or name (default: every device)",
	)
	f.BoolVar(
		&c.flagLatest, "latest", false,
		"Only list the latest revision of each device",
	)
	return f
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
	sm := securitymanager.New(client)

	revs := sm.Revisions()
	if c.flagDevice != "" {
		dev, err := devices.Find(ctx, sm, c.flagDevice)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error getting device: %v", err))
			return 1
		}
		revs = dev.Revisions()
	}

	var list []*securitymanager.Revision
	if c.flagLatest {
		list, err = revs.Latest(ctx)
	} else {
		list, err = revs.All(ctx)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing revisions: %v", err))
		return 1
	}

	table := &base.Table{Header: []string{"ID", "DEVICE", "STATE", "LATEST", "CREATED", "CREATED BY"}}
	recs := make([]firemon.Record, 0, len(list))
	for _, r := range list {
		s, err := r.Summary()
		if err != nil {
			c.UI.Error(fmt.Sprintf("error decoding revision %d: %v", r.ID(), err))
			return 1
		}
		table.Append(s.ID, s.DeviceName, s.RevisionState, s.Latest, formatTime(s.CreateDate), s.CreatedBy)
		recs = append(recs, r.Data())
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04") + " (" + humanize.Time(t) + ")"
}

type ExportCommand struct {
	*base.Command

	flagOut        string
	flagConfigOnly bool
}

func (c *ExportCommand) Synopsis() string {
	return "Export a revision"
}

func (c *ExportCommand) Help() string {
	return `Usage: fmctl revisions export [options] <revision id>

  Downloads a revision as a zip file.` + c.Flags().Help()
}

func (c *ExportCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("revisions export")
	f.StringVar(
		&c.flagOut, "out", "",
		"File to write (default: revision-<id>.zip)",
	)
	f.BoolVar(
		&c.flagConfigOnly, "config-only", false,
		"Export only the configuration files, not the normalized data",
	)
	return f
}

func (c *ExportCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one revision id")
		return 1
	}
	id, err := base.ParseID("revision", f.Arg(0))
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
	data, err := securitymanager.New(client).Revisions().Revision(id).Export(ctx, c.flagConfigOnly)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error exporting revision: %v", err))
		return 1
	}

	out := c.flagOut
	if out == "" {
		out = fmt.Sprintf("revision-%d.zip", id)
	}
	if err := afero.WriteFile(c.FS, out, data, 0o644); err != nil {
		c.UI.Error(fmt.Sprintf("error writing %s: %v", out, err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Wrote %s (%s)", out, humanize.Bytes(uint64(len(data)))))
	return 0
}
