package securitymanager

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Collectors is the data collector endpoint.
type Collectors struct {
	*firemon.Endpoint[*Collector]
	sm *SecurityManager
}

func newCollectors(sm *SecurityManager) *Collectors {
	c := &Collectors{sm: sm}
	c.Endpoint = firemon.NewEndpoint(sm.Client(), sm.URL()+"/collector",
		func(o *firemon.Object) *Collector { return &Collector{Object: o, sm: sm} })
	return c
}

// SaveUsage uploads rule usage counts collected outside of FireMon.
func (c *Collectors) SaveUsage(ctx context.Context, usage firemon.Record, async bool) (any, error) {
	resp, err := c.sm.Request("collector/usage", firemon.WithParam("asyncAggregation", boolParam(async))).
		Post(ctx, firemon.JSONBody(usage))
	if err != nil {
		return nil, fmt.Errorf("failed to save usage: %w", err)
	}
	return resp.Value()
}

// Collector is a data collector.
type Collector struct {
	*firemon.Object
	sm *SecurityManager
}

// Status returns the collector health.
func (c *Collector) Status(ctx context.Context) (firemon.Record, error) {
	return c.sm.Request("collector/status/"+strconv.Itoa(c.ID())).Record(ctx, nil)
}

// Devices returns the devices the collector retrieves.
func (c *Collector) Devices(ctx context.Context) ([]*Device, error) {
	recs, err := c.Request("device").List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices of collector %d: %w", c.ID(), err)
	}
	return c.sm.Devices().WrapAll(recs), nil
}

// CollectorGroups is the data collector group endpoint.
type CollectorGroups struct {
	*firemon.Endpoint[*CollectorGroup]
}

func newCollectorGroups(sm *SecurityManager) *CollectorGroups {
	return &CollectorGroups{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.URL()+"/collector/group",
			func(o *firemon.Object) *CollectorGroup { return &CollectorGroup{Object: o} }),
	}
}

// Count returns the number of groups. The server does not report a total.
func (g *CollectorGroups) Count(ctx context.Context) (int, error) {
	all, err := g.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// CollectorGroup is a group of data collectors.
type CollectorGroup struct {
	*firemon.Object
}

// SetMember adds a collector to the group. Existing members are unchanged.
func (g *CollectorGroup) SetMember(ctx context.Context, collectorID int) error {
	_, err := g.Request("member/" + strconv.Itoa(collectorID)).Put(ctx, nil)
	return err
}

// AssignDevice assigns a device to the group.
func (g *CollectorGroup) AssignDevice(ctx context.Context, deviceID int) error {
	_, err := g.Request("member/" + strconv.Itoa(deviceID)).Put(ctx, nil)
	return err
}

// Assigned returns the devices assigned to the group.
func (g *CollectorGroup) Assigned(ctx context.Context) ([]firemon.Record, error) {
	return g.Request("assigned").List(ctx, nil)
}
