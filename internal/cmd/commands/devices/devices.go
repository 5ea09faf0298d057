package devices

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage Security Manager devices"
}

func (c *Command) Help() string {
	return `Usage: fmctl devices <subcommand> [options] [args]

  This command groups subcommands for the devices of the working domain.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// Find returns the device with a numeric id or an exact name.
func Find(ctx context.Context, sm *securitymanager.SecurityManager, key string) (*securitymanager.Device, error) {
	if id, err := strconv.Atoi(key); err == nil {
		return sm.Devices().Get(ctx, id)
	}

	found, err := sm.Devices().Search(ctx, key)
	if err != nil {
		return nil, err
	}
	var exact []*securitymanager.Device
	for _, d := range found {
		if d.Name() == key {
			exact = append(exact, d)
		}
	}
	return firemon.ExactlyOne(exact, fmt.Sprintf("device %s", key))
}

func summaryTable(devs []*securitymanager.Device) (*base.Table, []firemon.Record, error) {
	t := &base.Table{Header: []string{"ID", "NAME", "VENDOR", "PRODUCT", "MANAGEMENT IP", "STATE"}}
	recs := make([]firemon.Record, 0, len(devs))
	for _, d := range devs {
		s, err := d.Summary()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode device %d: %w", d.ID(), err)
		}
		t.Append(s.ID, s.Name, s.Vendor, s.Product, s.ManagementIP, s.LastRetrievalState)
		recs = append(recs, d.Data())
	}
	return t, recs, nil
}
