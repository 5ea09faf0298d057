package inventory

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
	inv "github.com/fmapi/firemon-api-go/pkg/inventory"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Keep a local inventory of devices and revisions"
}

func (c *Command) Help() string {
	return `Usage: fmctl inventory <subcommand> [options] [args]

  This command groups subcommands for the local device inventory. The
  database is set in the inventory block of the config file and defaults
  to a sqlite file, fmctl.db.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// storeFlags are shared by the inventory subcommands.
type storeFlags struct {
	db string
}

func (s *storeFlags) add(f *base.FlagSet) {
	f.StringVar(
		&s.db, "db", "",
		"sqlite database file, overriding the inventory block of the config file",
	)
}

func (s *storeFlags) open(c *base.Command) (*inv.Store, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	invCfg := cfg.InventoryConfig()
	if s.db != "" {
		invCfg = inv.Config{Driver: inv.DriverSQLite, Path: s.db}
	}
	return inv.Open(invCfg, c.Log.Named("inventory"))
}

type SyncCommand struct {
	*base.Command
	storeFlags
}

func (c *SyncCommand) Synopsis() string {
	return "Copy devices and revisions into the inventory"
}

func (c *SyncCommand) Help() string {
	return `Usage: fmctl inventory sync [options]

  Copies every device of the working domain and its revisions into the
  inventory, and removes devices that no longer exist.` + c.Flags().Help()
}

func (c *SyncCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("inventory sync")
	c.storeFlags.add(f)
	return f
}

func (c *SyncCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	store, err := c.open(c.Command)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening inventory: %v", err))
		return 1
	}
	defer store.Close()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	res, err := store.Sync(ctx, securitymanager.New(client))
	c.UI.Info(fmt.Sprintf("Synced %d devices and %d revisions, removed %d devices",
		res.Devices, res.Revisions, res.Removed))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error syncing inventory: %v", err))
		return 1
	}
	return 0
}

type ListCommand struct {
	*base.Command
	storeFlags

	flagDomain int
}

func (c *ListCommand) Synopsis() string {
	return "List the devices in the inventory"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl inventory list [options] [device id]

  Lists the devices in the inventory, or the revisions of one device.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("inventory list")
	c.storeFlags.add(f)
	f.IntVar(
		&c.flagDomain, "domain", 0,
		"Only list devices of this domain (default: every domain)",
	)
	return f
}

func (c *ListCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	store, err := c.open(c.Command)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening inventory: %v", err))
		return 1
	}
	defer store.Close()

	if f.NArg() == 1 {
		id, err := base.ParseID("device", f.Arg(0))
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		dev, err := store.Device(ctx, id)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		table := &base.Table{Header: []string{"REVISION", "STATE", "LATEST", "CREATED", "CREATED BY"}}
		for _, r := range dev.Revisions {
			created := "-"
			if r.CreateDate != nil {
				created = humanize.Time(*r.CreateDate)
			}
			table.Append(r.ID, r.State, r.Latest, created, r.CreatedBy)
		}
		if err := c.Output(dev.Revisions, table); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		return 0
	}

	devices, err := store.Devices(ctx, c.flagDomain)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	table := &base.Table{Header: []string{"ID", "DOMAIN", "NAME", "VENDOR", "PRODUCT", "LATEST REVISION", "SYNCED"}}
	for _, d := range devices {
		table.Append(d.ID, d.DomainID, d.Name, d.Vendor, d.Product,
			strconv.Itoa(d.LatestRevisionID), humanize.Time(d.SyncedAt))
	}
	if err := c.Output(devices, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
