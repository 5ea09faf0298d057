package devices

import (
	"fmt"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type ListCommand struct {
	*base.Command

	flagSearch string
}

func (c *ListCommand) Synopsis() string {
	return "List devices"
}

func (c *ListCommand) Help() string {
	return `Usage: fmctl devices list [options]

  Lists the devices of the working domain.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("devices list")
	f.StringVar(
		&c.flagSearch, "search", "",
		"Only list devices the server matches against this term",
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

	var devs []*securitymanager.Device
	if c.flagSearch != "" {
		devs, err = sm.Devices().Search(ctx, c.flagSearch)
	} else {
		devs, err = sm.Devices().All(ctx)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing devices: %v", err))
		return 1
	}

	table, recs, err := summaryTable(devs)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type GetCommand struct {
	*base.Command
}

func (c *GetCommand) Synopsis() string {
	return "Show a device"
}

func (c *GetCommand) Help() string {
	return `Usage: fmctl devices get [options] <id|name>

  Shows every field of a device.` + c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	return c.Command.Flags("devices get")
}

func (c *GetCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected one device id or name")
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	dev, err := Find(ctx, securitymanager.New(client), f.Arg(0))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting device: %v", err))
		return 1
	}
	if err := c.Output(dev.Data(), base.RecordTable(dev.Data())); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type RetrieveCommand struct {
	*base.Command

	flagDebug bool
}

func (c *RetrieveCommand) Synopsis() string {
	return "Start a manual configuration retrieval"
}

func (c *RetrieveCommand) Help() string {
	return `Usage: fmctl devices retrieve [options] <id|name>...

  Asks the data collector to retrieve the configuration of each device now.` + c.Flags().Help()
}

func (c *RetrieveCommand) Flags() *base.FlagSet {
	f := c.Command.Flags("devices retrieve")
	f.BoolVar(
		&c.flagDebug, "debug", false,
		"Keep the retrieval debug output on the collector",
	)
	return f
}

func (c *RetrieveCommand) Run(args []string) int {
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

	code := 0
	for _, key := range f.Args() {
		dev, err := Find(ctx, sm, key)
		if err == nil {
			err = dev.Retrieve(ctx, c.flagDebug)
		}
		if err != nil {
			c.UI.Error(fmt.Sprintf("error retrieving %s: %v", key, err))
			code = 1
			continue
		}
		c.UI.Info(fmt.Sprintf("Retrieval started for %s (%d)", dev.Name(), dev.ID()))
	}
	return code
}
