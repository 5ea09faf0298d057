package devices

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

type ExportCommand struct {
	*base.Command

	flagOut        string
	flagConfigOnly bool
}

func (c *ExportCommand) Synopsis() string {
	return "Export the latest configuration of devices"
}

func (c *ExportCommand) Help() string {
	return `Usage: fmctl devices export [options] <id|name>...

  Downloads the latest revision of each device as a zip file named
  <device>-<id>.zip. A failed device does not stop the others.` + c.Flags().Help()
}

func (c *ExportCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("devices export")
	f.StringVar(
		&c.flagOut, "out", ".",
		"Directory to write the zip files to",
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
	if f.NArg() == 0 {
		c.UI.Error("expected at least one device id or name")
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

	if err := c.FS.MkdirAll(c.flagOut, 0o755); err != nil {
		c.UI.Error(fmt.Sprintf("error creating output directory: %v", err))
		return 1
	}

	var merr *multierror.Error
	for _, key := range f.Args() {
		dev, err := Find(ctx, sm, key)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", key, err))
			continue
		}
		data, err := dev.Export(ctx, c.flagConfigOnly)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", key, err))
			continue
		}

		name := fmt.Sprintf("%s-%d.zip", fileNameReplacer.Replace(dev.Name()), dev.ID())
		path := filepath.Join(c.flagOut, name)
		if err := afero.WriteFile(c.FS, path, data, 0o644); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", key, err))
			continue
		}
		c.UI.Info(fmt.Sprintf("Wrote %s (%s)", path, humanize.Bytes(uint64(len(data)))))
	}

	if err := merr.ErrorOrNil(); err != nil {
		c.UI.Error(fmt.Sprintf("error exporting devices: %v", err))
		return 1
	}
	return 0
}

type ImportCommand struct {
	*base.Command

	flagDevice     string
	flagChangeUser string
}

func (c *ImportCommand) Synopsis() string {
	return "Import configuration files as a new revision"
}

func (c *ImportCommand) Help() string {
	return `Usage: fmctl devices import [options] -device <id|name> <file>...

  Uploads configuration files and normalizes them as a new revision of the
  device.` + c.Flags().Help()
}

func (c *ImportCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("devices import")
	f.StringVar(
		&c.flagDevice, "device", "",
		"Device id or name to import to (required)",
	)
	f.StringVar(
		&c.flagChangeUser, "change-user", "",
		"User recorded as the author of the change (default: the login user)",
	)
	return f
}

func (c *ImportCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagDevice == "" || f.NArg() == 0 {
		c.UI.Error("expected -device and at least one file")
		return 1
	}

	files := make([]firemon.File, 0, f.NArg())
	for _, path := range f.Args() {
		data, err := afero.ReadFile(c.FS, path)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error reading %s: %v", path, err))
			return 1
		}
		files = append(files, firemon.File{Name: filepath.Base(path), Content: data})
	}

	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	dev, err := Find(ctx, securitymanager.New(client), c.flagDevice)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting device: %v", err))
		return 1
	}
	rev, err := dev.ImportConfig(ctx, files, c.flagChangeUser)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error importing config: %v", err))
		return 1
	}
	if err := c.Output(rev, base.RecordTable(rev)); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
