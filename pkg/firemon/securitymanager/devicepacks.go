package securitymanager

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// DevicePacks lists the installed device packs. The server has no lookup
// for a single pack so every query loads the full list.
type DevicePacks struct {
	*firemon.Endpoint[*DevicePack]
	sm *SecurityManager
}

func newDevicePacks(sm *SecurityManager) *DevicePacks {
	dp := &DevicePacks{sm: sm}
	dp.Endpoint = firemon.NewEndpoint(sm.Client(), sm.URL()+"/plugin/list/DEVICE_PACK",
		func(o *firemon.Object) *DevicePack { return &DevicePack{Object: o, sm: sm} },
		firemon.EndpointStyle(firemon.FilterLocal),
		firemon.EndpointLookupKey("artifactId"),
		firemon.EndpointParams(url.Values{
			"sort":       {"artifactId"},
			"showHidden": {"true"},
		}),
	)
	return dp
}

// Upload installs a device pack jar, replacing an installed version.
func (dp *DevicePacks) Upload(ctx context.Context, jar []byte) error {
	_, err := dp.sm.Request("plugin", firemon.WithParam("overwrite", "true")).
		Post(ctx, firemon.MultipartBody(nil, firemon.File{
			Field:       "devicepack.jar",
			Name:        "devicepack.jar",
			Content:     jar,
			ContentType: "application/java-archive",
		}))
	if err != nil {
		return fmt.Errorf("%w: upload failed: %w", firemon.ErrDevicePack, err)
	}
	dp.sm.log.Info("uploaded device pack", "bytes", len(jar))
	return nil
}

// DevicePack is an installed device pack.
type DevicePack struct {
	*firemon.Object
	sm *SecurityManager
}

// ArtifactID returns the pack name, for example "juniper_srx".
func (p *DevicePack) ArtifactID() string { return p.Data().Str("artifactId") }

// GroupID returns the pack group, for example "com.fm.sm.dp.juniper_srx".
func (p *DevicePack) GroupID() string { return p.Data().Str("groupId") }

func (p *DevicePack) String() string { return p.ArtifactID() }

// Layout returns the device settings layout of the pack.
func (p *DevicePack) Layout(ctx context.Context) (any, error) {
	resp, err := p.sm.Request(fmt.Sprintf("plugin/%s/%s/layout", p.GroupID(), p.ArtifactID()),
		firemon.WithParam("layoutName", "layout.json")).Post(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get layout for %s: %w", firemon.ErrDevicePack, p, err)
	}
	return resp.Value()
}

// Template returns the body of a device create request for this pack.
// Every layout setting is listed under extendedSettingsJson with its
// default value, or nil when it has none.
func (p *DevicePack) Template(ctx context.Context) (firemon.Record, error) {
	layout, err := p.Layout(ctx)
	if err != nil {
		return nil, err
	}

	d := p.Data()
	settings := map[string]any{}
	for _, field := range findWithKey(layout, "key") {
		settings[fmt.Sprint(field["key"])] = field["defaultValue"]
	}

	return firemon.Record{
		"name":         nil,
		"description":  nil,
		"managementIp": nil,
		"domainId":     p.Client().DomainID(),
		"devicePack": map[string]any{
			"artifactId": d["artifactId"],
			"deviceName": d["deviceName"],
			"groupId":    d["groupId"],
			"id":         d["id"],
			"type":       d["type"],
			"deviceType": d["deviceType"],
			"version":    d["version"],
		},
		"extendedSettingsJson": settings,
	}, nil
}

// findWithKey walks v and returns every object that has key. Object
// members are visited in sorted order so repeated keys resolve the same
// way on every call.
func findWithKey(v any, key string) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t[key]; ok {
			out = append(out, t)
		}
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, findWithKey(t[name], key)...)
		}
	case []any:
		for _, child := range t {
			out = append(out, findWithKey(child, key)...)
		}
	}
	return out
}
