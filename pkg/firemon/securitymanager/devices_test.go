package securitymanager_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/fmtest"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

const (
	appPath    = "/securitymanager/api"
	domainPath = appPath + "/domain/1"
	devicePath = domainPath + "/device"
)

func newSM(t *testing.T) (*fmtest.Server, *securitymanager.SecurityManager) {
	t.Helper()
	srv := fmtest.NewServer(t)
	return srv, securitymanager.New(srv.Client())
}

func edgeDevice() map[string]any {
	return map[string]any{
		"id":           5,
		"name":         "edge-fw",
		"managementIp": "10.0.0.5",
		"gpcStatus":    "CURRENT",
		"devicePack": map[string]any{
			"id":         40,
			"artifactId": "juniper_srx",
			"vendor":     "Juniper",
			"deviceName": "SRX",
		},
	}
}

func TestDevices_GetAndSummary(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodGet, devicePath+"/5", http.StatusOK, edgeDevice())

	dev, err := sm.Devices().Get(context.Background(), 5)
	require.NoError(t, err)

	s, err := dev.Summary()
	require.NoError(t, err)
	assert.Equal(t, 5, s.ID)
	assert.Equal(t, "edge-fw", s.Name)
	assert.Equal(t, "Juniper", s.Vendor)
	assert.Equal(t, "SRX", s.Product)
	assert.Equal(t, "juniper_srx", s.DevicePack.ArtifactID)
}

func TestDevices_Create(t *testing.T) {
	srv, sm := newSM(t)
	srv.Handle(http.MethodPost, devicePath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("manualRetrieval"))
		fmtest.WriteJSON(w, http.StatusOK, map[string]any{"id": 5})
	})
	srv.HandleJSON(http.MethodGet, devicePath+"/5", http.StatusOK, edgeDevice())

	dev, err := sm.Devices().Create(context.Background(), firemon.Record{"name": "edge-fw"}, false)

	require.NoError(t, err)
	assert.Equal(t, "edge-fw", dev.Name())
}

func TestDevices_CreateFailure(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodPost, devicePath, http.StatusBadRequest, map[string]any{"message": "bad ip"})

	_, err := sm.Devices().Create(context.Background(), firemon.Record{"name": "x"}, true)

	assert.ErrorIs(t, err, firemon.ErrDevice)
	assert.True(t, firemon.IsRequestError(err, http.StatusBadRequest))
}

func TestDevice_SaveSendsIDAndDevicePack(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodGet, devicePath+"/5", http.StatusOK, edgeDevice())
	srv.HandleStatus(http.MethodPut, devicePath+"/5", http.StatusNoContent)

	dev, err := sm.Devices().Get(context.Background(), 5)
	require.NoError(t, err)

	require.NoError(t, dev.Save(context.Background(), false))
	assert.Empty(t, srv.Calls(http.MethodPut, devicePath+"/5"))

	require.NoError(t, dev.Update(context.Background(), firemon.Record{"description": "core"}, true))

	call, ok := srv.LastCall(http.MethodPut, devicePath+"/5")
	require.True(t, ok)
	assert.Equal(t, "true", call.Query["manualRetrieval"][0])
	body := call.JSON(t)
	assert.Equal(t, 5.0, body["id"])
	assert.Equal(t, "core", body["description"])
	assert.Contains(t, body, "devicePack")
	assert.NotContains(t, body, "gpcStatus")
	assert.Empty(t, dev.Diff())
}

func TestDevice_Delete(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleStatus(http.MethodDelete, devicePath+"/5", http.StatusNoContent)
	dev := sm.Devices().Wrap(edgeDevice())

	require.NoError(t, dev.Delete(context.Background(), securitymanager.DefaultDeleteOptions()))

	call, _ := srv.LastCall(http.MethodDelete, devicePath+"/5")
	assert.Equal(t, "false", call.Query["deleteChildren"][0])
	assert.Equal(t, "false", call.Query["async"][0])
	assert.Equal(t, "false", call.Query["sendNotification"][0])
	assert.Equal(t, "true", call.Query["postProcessing"][0])
}

func TestDevice_ImportConfig(t *testing.T) {
	srv, sm := newSM(t)
	srv.Handle(http.MethodPost, devicePath+"/5/rev", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "IMPORT", q.Get("action"))
		assert.Equal(t, "firemon:[firemon-api-go]", q.Get("changeUser"))
		_, err := uuid.Parse(q.Get("correlationId"))
		assert.NoError(t, err)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["file"]
		require.Len(t, files, 2)
		assert.Equal(t, "config.xml", files[0].Filename)
		assert.Equal(t, "text/plain", files[0].Header.Get("Content-Type"))
		fmtest.WriteJSON(w, http.StatusOK, map[string]any{"id": 901})
	})
	dev := sm.Devices().Wrap(edgeDevice())

	rev, err := dev.ImportConfig(context.Background(), []firemon.File{
		{Name: "config.xml", Content: []byte("<config/>")},
		{Name: "interfaces.txt", Content: []byte("ge-0/0/0")},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, 901, rev.ID())

	_, err = dev.ImportConfig(context.Background(), nil, "")
	assert.ErrorIs(t, err, firemon.ErrInvalidArgument)
}

func TestDevice_ImportSupport(t *testing.T) {
	srv, sm := newSM(t)
	srv.Handle(http.MethodPost, devicePath+"/5/import", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("renormalize"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "edge-fw.zip", hdr.Filename)
		assert.Equal(t, []byte("PK"), data)
		w.WriteHeader(http.StatusNoContent)
	})
	dev := sm.Devices().Wrap(edgeDevice())

	out, err := dev.ImportSupport(context.Background(), []byte("PK"), true)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDevice_ExportAndRetrieve(t *testing.T) {
	srv, sm := newSM(t)
	srv.Handle(http.MethodGet, devicePath+"/5/export/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("zipdata"))
	})
	srv.HandleStatus(http.MethodPost, devicePath+"/5/manualretrieval", http.StatusNoContent)
	srv.HandleStatus(http.MethodPut, devicePath+"/5/sshhostkey", http.StatusNoContent)
	dev := sm.Devices().Wrap(edgeDevice())

	data, err := dev.Export(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("zipdata"), data)

	require.NoError(t, dev.Retrieve(context.Background(), true))
	call, _ := srv.LastCall(http.MethodPost, devicePath+"/5/manualretrieval")
	assert.Equal(t, "true", call.Query["debug"][0])

	require.NoError(t, dev.RemoveSSHKey(context.Background()))
}

func TestDevice_RuleUsage(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodGet, devicePath+"/5/ruleusagestat/daily", http.StatusOK, []any{map[string]any{"hits": 3}})
	dev := sm.Devices().Wrap(edgeDevice())

	v, err := dev.RuleUsage(context.Background(), "daily")
	require.NoError(t, err)
	assert.Len(t, v, 1)

	_, err = dev.RuleUsage(context.Background(), "weekly")
	assert.ErrorIs(t, err, firemon.ErrInvalidArgument)
}

func TestDevice_ProblemsAndNormalizedData(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodGet, appPath+"/device/5/nd/problem", http.StatusOK, []any{
		map[string]any{"type": "UNSUPPORTED", "message": "set foo"},
	})
	srv.HandleJSON(http.MethodGet, devicePath+"/5/rev/latest/nd/all", http.StatusOK, map[string]any{
		"revisionId":    77,
		"securityRules": []any{map[string]any{"id": "r1"}, map[string]any{"id": "r2"}},
	})
	dev := sm.Devices().Wrap(edgeDevice())

	problems, err := dev.Problems(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "UNSUPPORTED", problems[0].Str("type"))

	nd, err := dev.LatestNormalizedData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 77, nd.RevisionID())
	assert.Len(t, nd.Section("securityRules"), 2)
}

func TestDevices_FollowWorkingDomain(t *testing.T) {
	srv, sm := newSM(t)
	srv.HandleJSON(http.MethodGet, appPath+"/domain/2", http.StatusOK, map[string]any{"id": 2, "name": "Lab"})

	require.NoError(t, sm.Client().SetDomain(context.Background(), 2))

	assert.Equal(t, srv.URL+appPath+"/domain/2/device", sm.Devices().URL())
	assert.Equal(t, srv.URL+appPath+"/domain/2/rev", sm.Revisions().URL())
}
