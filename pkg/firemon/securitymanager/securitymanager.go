// Package securitymanager wraps the FireMon Security Manager API.
//
// Endpoints are built on every call so that they follow the client's
// working domain:
//
//	sm := securitymanager.New(client)
//	devices, err := sm.Devices().All(ctx)
package securitymanager

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// SecurityManager is the Security Manager application.
type SecurityManager struct {
	*firemon.App
	log hclog.Logger
}

// New returns the Security Manager application for c.
func New(c *firemon.Client) *SecurityManager {
	return &SecurityManager{
		App: firemon.NewApp(c, firemon.AppSecurityManager),
		log: c.Logger().Named("securitymanager"),
	}
}

// Devices returns the devices of the working domain.
func (sm *SecurityManager) Devices() *Devices {
	return newDevices(sm)
}

// DevicePacks returns the installed device packs.
func (sm *SecurityManager) DevicePacks() *DevicePacks {
	return newDevicePacks(sm)
}

// Collectors returns the data collectors.
func (sm *SecurityManager) Collectors() *Collectors {
	return newCollectors(sm)
}

// CollectorGroups returns the data collector groups.
func (sm *SecurityManager) CollectorGroups() *CollectorGroups {
	return newCollectorGroups(sm)
}

// Revisions returns every revision in the working domain.
func (sm *SecurityManager) Revisions() *Revisions {
	return newRevisions(sm, 0)
}

// Users returns the users of the working domain.
func (sm *SecurityManager) Users() *Users {
	return newUsers(sm)
}

// UserGroups returns the user groups of the working domain.
func (sm *SecurityManager) UserGroups() *UserGroups {
	return newUserGroups(sm)
}

// CentralSyslogs returns the central syslog servers.
func (sm *SecurityManager) CentralSyslogs() *CentralSyslogs {
	return newCentralSyslogs(sm)
}

// CentralSyslogConfigs returns the central syslog configurations.
func (sm *SecurityManager) CentralSyslogConfigs() *CentralSyslogConfigs {
	return newCentralSyslogConfigs(sm)
}

// CollectionConfigs returns every collection configuration.
func (sm *SecurityManager) CollectionConfigs() *CollectionConfigs {
	return newCollectionConfigs(sm, 0, 0)
}

// Zones returns the normalized zones of every device.
func (sm *SecurityManager) Zones() *Zones {
	return newZones(sm, 0)
}

// FmZones returns the FireMon zones of the working domain.
func (sm *SecurityManager) FmZones() *FmZones {
	return newFmZones(sm)
}

// DeviceMap returns the topology map of a device.
func (sm *SecurityManager) DeviceMap(deviceID int) *Map {
	return &Map{sm: sm, deviceID: deviceID}
}

// GroupMap returns the topology map of a device group. A groupID of 0
// selects group 1.
func (sm *SecurityManager) GroupMap(groupID int) *Map {
	if groupID == 0 {
		groupID = 1
	}
	return &Map{sm: sm, groupID: groupID}
}

// License returns the license endpoint.
func (sm *SecurityManager) License() *License {
	return &License{sm: sm}
}

// Logging returns the server logger settings.
func (sm *SecurityManager) Logging() *Logging {
	return &Logging{sm: sm}
}

// PermissionDefinitions returns every permission a user group can hold.
func (sm *SecurityManager) PermissionDefinitions(ctx context.Context) ([]firemon.Record, error) {
	recs, err := sm.DomainRequest("permissiondefinition").List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission definitions: %w", err)
	}

	var perms []firemon.Record
	for _, group := range recs {
		perms = append(perms, group.Records("permissions")...)
	}
	return perms, nil
}

// boolParam formats a flag for a query string.
func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
