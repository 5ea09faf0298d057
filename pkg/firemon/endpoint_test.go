package firemon_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/fmtest"
)

type widget struct{ *firemon.Object }

func newWidget(o *firemon.Object) *widget { return &widget{o} }

const widgetPath = "/securitymanager/api/domain/1/widget"

func widgetEndpoint(srv *fmtest.Server, c *firemon.Client, opts ...firemon.EndpointOption) *firemon.Endpoint[*widget] {
	return firemon.NewEndpoint(c, srv.URL+widgetPath, newWidget, opts...)
}

func TestEndpoint_AllAndGet(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, widgetPath, []map[string]any{
		{"id": 1, "name": "one"},
		{"id": 2, "name": "two"},
	})
	srv.HandleJSON(http.MethodGet, widgetPath+"/2", http.StatusOK, map[string]any{"id": 2, "name": "two"})
	ep := widgetEndpoint(srv, srv.Client())

	all, err := ep.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Name())

	w, err := ep.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "two", w.String())
	assert.Equal(t, srv.URL+widgetPath+"/2", w.URL())

	_, err = ep.Get(context.Background(), 3)
	assert.ErrorIs(t, err, firemon.ErrNotFound)
}

func TestEndpoint_FilterSearch(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, widgetPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "edge", r.URL.Query().Get("search"))
		fmtest.WriteJSON(w, http.StatusOK, fmtest.Page([]map[string]any{{"id": 9, "name": "edge-1"}}, r))
	})
	ep := widgetEndpoint(srv, srv.Client())

	found, err := ep.Find(context.Background(), firemon.Filter{"name": "edge"})

	require.NoError(t, err)
	assert.Equal(t, 9, found.ID())
}

func TestEndpoint_FilterKeyValue(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, widgetPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"name=a", "vendor=Cisco"}, r.URL.Query()["filter"])
		fmtest.WriteJSON(w, http.StatusOK, []map[string]any{{"id": 1}, {"id": 2}})
	})
	ep := widgetEndpoint(srv, srv.Client(), firemon.EndpointStyle(firemon.FilterKeyValue))

	items, err := ep.Filter(context.Background(), firemon.Filter{"vendor": "Cisco", "name": "a"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = ep.Find(context.Background(), firemon.Filter{"vendor": "Cisco", "name": "a"})
	assert.ErrorIs(t, err, firemon.ErrMultipleResults)

	_, err = ep.Filter(context.Background(), nil)
	assert.ErrorIs(t, err, firemon.ErrInvalidArgument)
}

func TestEndpoint_FilterLocal(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, widgetPath, http.StatusOK, []map[string]any{
		{"artifactId": "cisco_asa", "vendor": "Cisco"},
		{"artifactId": "juniper_srx", "vendor": "Juniper"},
		{"artifactId": "cisco_ios", "vendor": "Cisco"},
	})
	ep := widgetEndpoint(srv, srv.Client(),
		firemon.EndpointStyle(firemon.FilterLocal),
		firemon.EndpointLookupKey("artifactId"))

	cisco, err := ep.Filter(context.Background(), firemon.Filter{"vendor": "Cisco"})
	require.NoError(t, err)
	assert.Len(t, cisco, 2)

	srx, err := ep.Get(context.Background(), "juniper_srx")
	require.NoError(t, err)
	assert.Equal(t, "juniper_srx", srx.Name())

	_, err = ep.Get(context.Background(), "palo_alto")
	assert.ErrorIs(t, err, firemon.ErrNotFound)

	n, err := ep.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEndpoint_CreateFetchesByID(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodPost, widgetPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("manualRetrieval"))
		fmtest.WriteJSON(w, http.StatusOK, map[string]any{"id": 31})
	})
	srv.HandleJSON(http.MethodGet, widgetPath+"/31", http.StatusOK, map[string]any{"id": 31, "name": "new"})
	ep := widgetEndpoint(srv, srv.Client())

	w, err := ep.Create(context.Background(), firemon.Record{"name": "new"}, map[string][]string{"manualRetrieval": {"true"}})

	require.NoError(t, err)
	assert.Equal(t, "new", w.Name())
	call, _ := srv.LastCall(http.MethodPost, widgetPath)
	assert.Equal(t, "new", call.JSON(t)["name"])
}

func TestEndpoint_Count(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, widgetPath, http.StatusOK, map[string]any{"total": 12, "results": []any{}})
	ep := widgetEndpoint(srv, srv.Client())

	n, err := ep.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestObject_SaveAndDelete(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, widgetPath+"/4", http.StatusOK, map[string]any{"id": 4, "name": "old"})
	srv.HandleStatus(http.MethodPut, widgetPath+"/4", http.StatusNoContent)
	srv.HandleStatus(http.MethodDelete, widgetPath+"/4", http.StatusNoContent)
	ep := widgetEndpoint(srv, srv.Client())

	w, err := ep.Get(context.Background(), 4)
	require.NoError(t, err)

	require.NoError(t, w.Save(context.Background()))
	assert.Empty(t, srv.Calls(http.MethodPut, widgetPath+"/4"))

	w.Set("name", "renamed")
	require.NoError(t, w.Save(context.Background()))
	call, ok := srv.LastCall(http.MethodPut, widgetPath+"/4")
	require.True(t, ok)
	assert.Equal(t, "renamed", call.JSON(t)["name"])
	assert.Empty(t, w.Diff())

	require.NoError(t, w.Delete(context.Background()))
	assert.Len(t, srv.Calls(http.MethodDelete, widgetPath+"/4"), 1)
}
