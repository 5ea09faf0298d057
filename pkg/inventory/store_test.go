package inventory_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmapi/firemon-api-go/pkg/firemon/fmtest"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
	"github.com/fmapi/firemon-api-go/pkg/inventory"
)

const devicePath = "/securitymanager/api/domain/1/device"

func newStore(t *testing.T) *inventory.Store {
	t.Helper()
	store, err := inventory.Open(inventory.Config{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func device(id int, name string) map[string]any {
	return map[string]any{
		"id":               id,
		"domainId":         1,
		"name":             name,
		"managementIp":     "10.0.0.1",
		"latestRevisionId": id * 10,
		"devicePack": map[string]any{
			"id":         40,
			"artifactId": "juniper_srx",
			"vendor":     "Juniper Networks",
			"deviceName": "SRX",
		},
	}
}

func TestConnect_SQLiteDefaults(t *testing.T) {
	db, err := inventory.Connect(inventory.Config{Path: ":memory:"}, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := inventory.Connect(inventory.Config{Driver: "oracle"}, nil)
	assert.ErrorContains(t, err, "unsupported inventory driver")
}

func TestStore_Sync(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, []map[string]any{device(5, "edge"), device(6, "core")})
	srv.HandlePaged(http.MethodGet, devicePath+"/5/rev", []map[string]any{
		{"id": 49, "deviceId": 5, "latest": false, "createDate": "2024-01-02T03:04:05.000Z"},
		{"id": 50, "deviceId": 5, "latest": true, "createDate": "2024-02-03T03:04:05.000Z",
			"completeDate": "2024-02-03T03:05:00.000Z", "revisionState": "COMPLETE"},
	})
	srv.HandlePaged(http.MethodGet, devicePath+"/6/rev", []map[string]any{})
	sm := securitymanager.New(srv.Client())
	store := newStore(t)

	res, err := store.Sync(context.Background(), sm)

	require.NoError(t, err)
	assert.Equal(t, inventory.SyncResult{Devices: 2, Revisions: 2}, res)

	devices, err := store.Devices(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "core", devices[0].Name)
	edge := devices[1]
	assert.Equal(t, "Juniper Networks", edge.Vendor)
	assert.Equal(t, "SRX", edge.Product)
	assert.Equal(t, "juniper_srx", edge.DevicePack)
	assert.Equal(t, 50, edge.LatestRevisionID)
	assert.Equal(t, "10.0.0.1", edge.Data.Str("managementIp"))

	revs, err := store.Revisions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, 50, revs[0].ID)
	assert.True(t, revs[0].Latest)
	require.NotNil(t, revs[0].CompleteDate)
	assert.Equal(t, 2024, revs[0].CreateDate.Year())
	assert.Nil(t, revs[1].CompleteDate)

	got, err := store.Device(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got.Revisions, 2)
}

func TestStore_SyncRemovesAndCollectsFailures(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, []map[string]any{device(5, "edge"), device(6, "core")})
	srv.HandlePaged(http.MethodGet, devicePath+"/5/rev", []map[string]any{{"id": 50, "deviceId": 5, "latest": true}})
	srv.HandlePaged(http.MethodGet, devicePath+"/6/rev", []map[string]any{{"id": 60, "deviceId": 6, "latest": true}})
	sm := securitymanager.New(srv.Client())
	store := newStore(t)

	_, err := store.Sync(context.Background(), sm)
	require.NoError(t, err)

	// core is gone and the revisions of edge fail to load.
	srv.HandlePaged(http.MethodGet, devicePath, []map[string]any{device(5, "edge"), device(7, "dmz")})
	srv.HandleStatus(http.MethodGet, devicePath+"/5/rev", http.StatusInternalServerError)
	srv.HandlePaged(http.MethodGet, devicePath+"/7/rev", []map[string]any{})

	res, err := store.Sync(context.Background(), sm)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device 5 (edge)")
	assert.Equal(t, inventory.SyncResult{Devices: 1, Removed: 1}, res)

	devices, err := store.Devices(context.Background(), 0)
	require.NoError(t, err)
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"dmz", "edge"}, names)

	revs, err := store.Revisions(context.Background(), 6)
	require.NoError(t, err)
	assert.Empty(t, revs)
	revs, err = store.Revisions(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}
