package securitymanager

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Keys the server owns. They are dropped from templates and updates.
var collectionConfigReadOnly = []string{
	"index",
	"createdBy",
	"createdDate",
	"devicePackArtifactId",
	"devicePackDeviceName",
	"devicePackDeviceType",
	"devicePackGroupId",
	"devicePackId",
	"devicePackVendor",
	"lastModifiedBy",
	"lastModifiedDate",
}

// CollectionConfigs lists collection configurations. The API cannot
// filter them so lookups run locally.
type CollectionConfigs struct {
	*firemon.Endpoint[*CollectionConfig]
	sm           *SecurityManager
	deviceID     int
	devicePackID int
}

func newCollectionConfigs(sm *SecurityManager, deviceID, devicePackID int) *CollectionConfigs {
	cc := &CollectionConfigs{sm: sm, deviceID: deviceID, devicePackID: devicePackID}
	params := url.Values{}
	if devicePackID != 0 {
		params.Set("devicePackId", strconv.Itoa(devicePackID))
	}
	cc.Endpoint = firemon.NewEndpoint(sm.Client(), sm.URL()+"/collectionconfig",
		func(o *firemon.Object) *CollectionConfig {
			return &CollectionConfig{Object: o, sm: sm, deviceID: deviceID}
		},
		firemon.EndpointStyle(firemon.FilterLocal),
		firemon.EndpointParams(params),
	)
	return cc
}

// Create adds a collection config. Passing the id of an existing config
// overwrites it, defaults included; prefer Duplicate.
func (cc *CollectionConfigs) Create(ctx context.Context, cfg firemon.Record) (*CollectionConfig, error) {
	resp, err := cc.Client().NewRequest(cc.URL()).Post(ctx, firemon.JSONBody(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create collection config: %w", firemon.ErrDevice, err)
	}
	rec, err := resp.Record()
	if err != nil {
		return nil, err
	}
	return cc.Get(ctx, rec.ID())
}

// Duplicate copies an existing config under a new name.
func (cc *CollectionConfigs) Duplicate(ctx context.Context, id int, name string) (*CollectionConfig, error) {
	src, err := cc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg := src.Data().Without("index", "id")
	cfg["name"] = name
	return cc.Create(ctx, cfg)
}

// CollectionConfig is a set of change and usage patterns used when
// retrieving a device.
type CollectionConfig struct {
	*firemon.Object
	sm       *SecurityManager
	deviceID int
}

// Template returns the editable fields of the config.
func (c *CollectionConfig) Template() firemon.Record {
	return c.Data().Without(collectionConfigReadOnly...)
}

// Update replaces the config. Server owned keys are dropped and the id
// and device pack are forced to the current values.
func (c *CollectionConfig) Update(ctx context.Context, cfg firemon.Record) error {
	data := cfg.Without(collectionConfigReadOnly...)
	data["id"] = c.ID()
	data["devicePackId"] = c.Data()["devicePackId"]
	if _, err := c.Client().NewRequest(c.URL()).Put(ctx, firemon.JSONBody(data)); err != nil {
		return fmt.Errorf("failed to update collection config %d: %w", c.ID(), err)
	}
	return c.Reload(ctx)
}

// SetDevicePack makes the config the default of its device pack.
func (c *CollectionConfig) SetDevicePack(ctx context.Context) error {
	return c.assign(ctx, http.MethodPut, fmt.Sprintf("devicepack/%d/assignment/%d", c.devicePackID(), c.ID()))
}

// UnsetDevicePack restores the device pack default.
func (c *CollectionConfig) UnsetDevicePack(ctx context.Context) error {
	return c.assign(ctx, http.MethodDelete, fmt.Sprintf("devicepack/%d/assignment", c.devicePackID()))
}

// SetDevice assigns the config to a device. deviceID may be 0 when the
// config was loaded through a device. The server ignores devices of a
// different device pack.
func (c *CollectionConfig) SetDevice(ctx context.Context, deviceID int) error {
	id, err := c.device(deviceID)
	if err != nil {
		return err
	}
	return c.assign(ctx, http.MethodPut, fmt.Sprintf("device/%d/assignment/%d", id, c.ID()))
}

// UnsetDevice removes the assignment from a device. It reports false
// without calling the server when the config is not active for it.
func (c *CollectionConfig) UnsetDevice(ctx context.Context, deviceID int) (bool, error) {
	id, err := c.device(deviceID)
	if err != nil {
		return false, err
	}
	active := false
	for _, v := range c.Data().Slice("activatedDeviceIds") {
		if fmt.Sprint(v) == strconv.Itoa(id) {
			active = true
			break
		}
	}
	if !active {
		return false, nil
	}
	if err := c.assign(ctx, http.MethodDelete, fmt.Sprintf("device/%d/assignment", id)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *CollectionConfig) devicePackID() int { return c.Data().Int("devicePackId") }

func (c *CollectionConfig) device(deviceID int) (int, error) {
	if c.deviceID != 0 {
		return c.deviceID, nil
	}
	if deviceID == 0 {
		return 0, fmt.Errorf("%w: a device id is required", firemon.ErrDevice)
	}
	return deviceID, nil
}

func (c *CollectionConfig) assign(ctx context.Context, method, key string) error {
	req := c.Client().NewRequest(c.CollectionURL(), firemon.WithKey(key))
	var err error
	if method == http.MethodDelete {
		err = req.Delete(ctx)
	} else {
		_, err = req.Put(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to change assignment of collection config %d: %w", c.ID(), err)
	}
	return c.Reload(ctx)
}
