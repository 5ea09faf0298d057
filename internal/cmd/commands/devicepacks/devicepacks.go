package devicepacks

import (
	"fmt"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage device packs"
}

func (c *Command) Help() string {
	return `Usage: fmctl devicepacks <subcommand> [options] [args]

  This command groups subcommands for the installed device packs.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command
}

func (c *ListCommand) Synopsis() string {
	return "List installed device packs"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl devicepacks list [options]

  Lists the installed device packs.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	return c.Command.Flags("devicepacks list")
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
	packs, err := securitymanager.New(client).DevicePacks().All(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing device packs: %v", err))
		return 1
	}

	table := &base.Table{Header: []string{"ID", "ARTIFACT", "GROUP", "VENDOR", "DEVICE", "VERSION"}}
	recs := make([]firemon.Record, 0, len(packs))
	for _, p := range packs {
		d := p.Data()
		table.Append(p.ID(), p.ArtifactID(), p.GroupID(), d.Str("vendor"), d.Str("deviceName"), d.Str("version"))
		recs = append(recs, d)
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type TemplateCommand struct {
	*base.Command
}

func (c *TemplateCommand) Synopsis() string {
	return "Print the device template of a device pack"
}

func (c *TemplateCommand) Help() string {
	return `Usage: fmctl devicepacks template [options] <artifact id>

  Prints a device definition with the default settings of the device pack,
  ready to be edited and used to create a device.` + c.Flags().Help()
}

func (c *TemplateCommand) Flags() *base.FlagSet {
	return c.Command.Flags("devicepacks template")
}

func (c *TemplateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one artifact id")
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	pack, err := securitymanager.New(client).DevicePacks().Get(ctx, f.Arg(0))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting device pack: %v", err))
		return 1
	}
	tmpl, err := pack.Template(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building template: %v", err))
		return 1
	}
	// The template is a nested document; a table would flatten it.
	if err := c.Output(tmpl, nil); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type UploadCommand struct {
	*base.Command
}

func (c *UploadCommand) Synopsis() string {
	return "Install or update a device pack"
}

func (c *UploadCommand) Help() string {
	return `Usage: fmctl devicepacks upload [options] <jar file>

  Uploads a device pack jar, replacing an installed version.` + c.Flags().Help()
}

func (c *UploadCommand) Flags() *base.FlagSet {
	return c.Command.Flags("devicepacks upload")
}

func (c *UploadCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one jar file")
		return 1
	}
	jar, err := afero.ReadFile(c.FS, f.Arg(0))
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
	if err := securitymanager.New(client).DevicePacks().Upload(ctx, jar); err != nil {
		c.UI.Error(fmt.Sprintf("error uploading device pack: %v", err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Uploaded %s", f.Arg(0)))
	return 0
}
