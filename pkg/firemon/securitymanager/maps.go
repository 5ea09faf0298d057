package securitymanager

import (
	"context"
	"fmt"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Map is the access path topology map of a device or device group.
type Map struct {
	sm       *SecurityManager
	deviceID int
	groupID  int
}

// URL returns the map URL.
func (m *Map) URL() string {
	if m.deviceID != 0 {
		return fmt.Sprintf("%s/device/%d/map", m.sm.DomainURL(), m.deviceID)
	}
	return fmt.Sprintf("%s/devicegroup/%d/map", m.sm.DomainURL(), m.groupID)
}

// Get returns the map.
func (m *Map) Get(ctx context.Context) (firemon.Record, error) {
	return m.sm.Client().NewRequest(m.URL()).Record(ctx, nil)
}

// Create builds or rebuilds the map of a device. Group maps are built by
// the server.
func (m *Map) Create(ctx context.Context, data firemon.Record) (any, error) {
	if m.deviceID == 0 {
		return nil, fmt.Errorf("%w: maps can only be created for a device", firemon.ErrNotSupported)
	}
	var body firemon.Body
	if data != nil {
		body = firemon.JSONBody(data)
	}
	resp, err := m.sm.Client().NewRequest(m.URL()).Put(ctx, body)
	if err != nil {
		return nil, err
	}
	return resp.Value()
}
