package securitymanager

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Zones lists the normalized zones of devices, newest device first.
// Zones are read only.
type Zones struct {
	*firemon.Endpoint[*Zone]
}

func newZones(sm *SecurityManager, deviceID int) *Zones {
	u := sm.DomainURL() + "/zoneobject/paged-search"
	if deviceID != 0 {
		u = fmt.Sprintf("%s/device/%d/zoneobject/paged-search", sm.DomainURL(), deviceID)
	}
	return &Zones{
		Endpoint: firemon.NewEndpoint(sm.Client(), u,
			func(o *firemon.Object) *Zone { return &Zone{Object: o} },
			firemon.EndpointStyle(firemon.FilterLocal),
			firemon.EndpointLookupKey("name"),
		),
	}
}

// All returns every zone sorted by device id, highest first.
func (z *Zones) All(ctx context.Context) ([]*Zone, error) {
	zones, err := z.Endpoint.All(ctx)
	if err != nil {
		return nil, err
	}
	sortZones(zones)
	return zones, nil
}

// Filter returns the zones matching filter sorted like All.
func (z *Zones) Filter(ctx context.Context, filter firemon.Filter) ([]*Zone, error) {
	zones, err := z.Endpoint.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortZones(zones)
	return zones, nil
}

func sortZones(zones []*Zone) {
	slices.SortStableFunc(zones, func(a, b *Zone) int {
		return cmp.Compare(b.DeviceID(), a.DeviceID())
	})
}

// Zone is a zone found in a device configuration.
type Zone struct {
	*firemon.Object
}

// DeviceID returns the device the zone was found on.
func (z *Zone) DeviceID() int {
	if z.Data().Has("deviceid") {
		return z.Data().Int("deviceid")
	}
	return z.Data().Int("deviceId")
}

// FmZones is the FireMon zone endpoint.
type FmZones struct {
	*firemon.Endpoint[*FmZone]
}

func newFmZones(sm *SecurityManager) *FmZones {
	return &FmZones{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/zone",
			func(o *firemon.Object) *FmZone { return &FmZone{Object: o} }),
	}
}

// FmZone is a zone defined in FireMon and mapped onto device zones.
type FmZone struct {
	*firemon.Object
}
