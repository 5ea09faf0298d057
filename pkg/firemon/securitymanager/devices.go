package securitymanager

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Fields the server computes and rejects on write.
var deviceReadOnly = []string{
	"securityConcernIndex",
	"gpcComputeDate",
	"gpcDirtyDate",
	"gpcImplementDate",
	"gpcStatus",
}

// Devices is the device endpoint of the working domain.
type Devices struct {
	*firemon.Endpoint[*Device]
	sm *SecurityManager
}

func newDevices(sm *SecurityManager) *Devices {
	d := &Devices{sm: sm}
	d.Endpoint = firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/device", d.wrap)
	return d
}

func (d *Devices) wrap(o *firemon.Object) *Device {
	o.SetReadOnly(deviceReadOnly...)
	return &Device{Object: o, sm: d.sm}
}

// Create adds a device. With retrieve set a manual retrieval starts once
// the device exists.
func (d *Devices) Create(ctx context.Context, cfg firemon.Record, retrieve bool) (*Device, error) {
	dev, err := d.Endpoint.Create(ctx, cfg, url.Values{"manualRetrieval": {boolParam(retrieve)}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", firemon.ErrDevice, err)
	}
	d.sm.log.Info("created device", "id", dev.ID(), "name", dev.Name())
	return dev, nil
}

// Device is a managed device.
type Device struct {
	*firemon.Object
	sm *SecurityManager
}

// DeviceSummary is the typed view of the commonly used device fields.
type DeviceSummary struct {
	ID                 int    `json:"id"`
	DomainID           int    `json:"domainId"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	ManagementIP       string `json:"managementIp"`
	Vendor             string `json:"vendor"`
	Product            string `json:"product"`
	ParentID           int    `json:"parentId"`
	DataCollectorID    int    `json:"dataCollectorId"`
	LatestRevisionID   int    `json:"latestRevisionId"`
	LastRetrievalState string `json:"lastRetrievalState"`
	DevicePack         struct {
		ID         int    `json:"id"`
		ArtifactID string `json:"artifactId"`
		GroupID    string `json:"groupId"`
		DeviceName string `json:"deviceName"`
		Version    string `json:"version"`
	} `json:"devicePack"`
}

// Summary decodes the commonly used fields.
func (d *Device) Summary() (DeviceSummary, error) {
	var s DeviceSummary
	err := d.Data().Decode(&s)
	if s.Vendor == "" {
		s.Vendor = d.Data().Map("devicePack").Str("vendor")
	}
	if s.Product == "" {
		s.Product = d.Data().Map("devicePack").Str("deviceName")
	}
	return s, err
}

// Save sends local changes. The id and device pack always go along since
// the server requires them.
func (d *Device) Save(ctx context.Context, retrieve bool) error {
	if len(d.Diff()) == 0 {
		return nil
	}
	return d.put(ctx, d.Serialize(), retrieve)
}

// Update applies data to the device and saves it.
func (d *Device) Update(ctx context.Context, data firemon.Record, retrieve bool) error {
	for k, v := range data {
		d.Set(k, v)
	}
	return d.Save(ctx, retrieve)
}

func (d *Device) put(ctx context.Context, data firemon.Record, retrieve bool) error {
	data["id"] = d.ID()
	if dp, ok := d.Data()["devicePack"]; ok {
		data["devicePack"] = dp
	}
	if err := d.Object.Update(ctx, data, firemon.WithParam("manualRetrieval", boolParam(retrieve))); err != nil {
		return fmt.Errorf("%w: %w", firemon.ErrDevice, err)
	}
	return nil
}

// DeleteOptions control what a device delete does.
type DeleteOptions struct {
	DeleteChildren   bool
	Async            bool
	SendNotification bool
	PostProcessing   bool
}

// DefaultDeleteOptions keeps child devices and runs post processing.
func DefaultDeleteOptions() DeleteOptions {
	return DeleteOptions{PostProcessing: true}
}

// Delete removes the device.
func (d *Device) Delete(ctx context.Context, opts DeleteOptions) error {
	err := d.Object.Delete(ctx,
		firemon.WithParam("deleteChildren", boolParam(opts.DeleteChildren)),
		firemon.WithParam("async", boolParam(opts.Async)),
		firemon.WithParam("sendNotification", boolParam(opts.SendNotification)),
		firemon.WithParam("postProcessing", boolParam(opts.PostProcessing)),
	)
	if err != nil {
		return err
	}
	d.sm.log.Info("deleted device", "id", d.ID(), "name", d.Name())
	return nil
}

// Export downloads the latest revision as a zip file. With configOnly only
// the configuration files are included.
func (d *Device) Export(ctx context.Context, configOnly bool) ([]byte, error) {
	key := "export"
	if configOnly {
		key = "export/config"
	}
	data, err := d.Request(key).Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export device %d: %w", d.ID(), err)
	}
	return data, nil
}

// ImportConfig uploads configuration files as a new revision. An empty
// changeUser is replaced with the session user.
func (d *Device) ImportConfig(ctx context.Context, files []firemon.File, changeUser string) (firemon.Record, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", firemon.ErrInvalidArgument)
	}
	if changeUser == "" {
		changeUser = d.Client().Username() + ":[firemon-api-go]"
	}
	correlationID, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to create correlation id: %w", err)
	}

	parts := make([]firemon.File, len(files))
	for i, f := range files {
		if f.Field == "" {
			f.Field = "file"
		}
		if f.ContentType == "" {
			f.ContentType = "text/plain"
		}
		parts[i] = f
	}

	d.sm.log.Info("importing device config",
		"device_id", d.ID(),
		"files", len(parts),
		"correlation_id", correlationID.String(),
	)

	resp, err := d.Request("rev",
		firemon.WithParam("action", "IMPORT"),
		firemon.WithParam("changeUser", changeUser),
		firemon.WithParam("correlationId", correlationID.String()),
	).Post(ctx, firemon.MultipartBody(nil, parts...))
	if err != nil {
		return nil, fmt.Errorf("%w: config import failed: %w", firemon.ErrDevice, err)
	}
	return recordOrEmpty(resp)
}

// ImportSupport uploads a support zip. With renormalize the server
// normalizes the configs again instead of using the included data.
func (d *Device) ImportSupport(ctx context.Context, zip []byte, renormalize bool) (firemon.Record, error) {
	resp, err := d.Request("import", firemon.WithParam("renormalize", boolParam(renormalize))).
		Post(ctx, firemon.MultipartBody(nil, firemon.File{
			Field:       "file",
			Name:        fmt.Sprintf("%s.zip", d.Name()),
			Content:     zip,
			ContentType: "application/zip",
		}))
	if err != nil {
		return nil, fmt.Errorf("%w: support import failed: %w", firemon.ErrDevice, err)
	}
	return recordOrEmpty(resp)
}

// Retrieve starts a manual retrieval.
func (d *Device) Retrieve(ctx context.Context, debug bool) error {
	_, err := d.Request("manualretrieval", firemon.WithParam("debug", boolParam(debug))).Post(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: retrieval failed: %w", firemon.ErrDevice, err)
	}
	return nil
}

// RuleUsage returns rule hit counts. kind is "total" or "daily".
func (d *Device) RuleUsage(ctx context.Context, kind string) (any, error) {
	if kind != "total" && kind != "daily" {
		return nil, fmt.Errorf("%w: rule usage kind must be total or daily, got %q", firemon.ErrInvalidArgument, kind)
	}
	return d.Request("ruleusagestat/"+kind).Get(ctx, url.Values{})
}

// Problems returns the normalization problems of the latest revision.
func (d *Device) Problems(ctx context.Context) ([]firemon.Record, error) {
	return d.sm.Request("device/" + strconv.Itoa(d.ID()) + "/nd/problem").List(ctx, nil)
}

// LatestNormalizedData returns the normalized data of the latest revision.
func (d *Device) LatestNormalizedData(ctx context.Context) (*NormalizedData, error) {
	rec, err := d.Request("rev/latest/nd/all").Record(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &NormalizedData{Record: rec}, nil
}

// RemoveSSHKey removes the device host key from every collector.
func (d *Device) RemoveSSHKey(ctx context.Context) error {
	_, err := d.Request("sshhostkey").Put(ctx, nil)
	return err
}

// Revisions returns the revisions of the device.
func (d *Device) Revisions() *Revisions {
	return newRevisions(d.sm, d.ID())
}

// CollectionConfigs returns the collection configs usable by the device.
func (d *Device) CollectionConfigs() *CollectionConfigs {
	return newCollectionConfigs(d.sm, d.ID(), d.Data().Map("devicePack").ID())
}

func recordOrEmpty(resp *firemon.Response) (firemon.Record, error) {
	if !resp.IsJSON() {
		return firemon.Record{}, nil
	}
	return resp.Record()
}
