package firemon_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/fmtest"
)

func TestNew_LogsInAndLoadsVersion(t *testing.T) {
	srv := fmtest.NewServer(t)

	c := srv.Client()

	assert.Equal(t, fmtest.Version, c.Version())
	assert.Equal(t, 1, c.DomainID())
	name, desc := c.Domain()
	assert.Equal(t, "Default", name)
	assert.Equal(t, "Default Domain", desc)
	assert.Equal(t, "FMOS: "+srv.URL+" ver. "+fmtest.Version, c.String())

	login, ok := srv.LastCall(http.MethodPost, "/securitymanager/api/authentication/login")
	require.True(t, ok)
	assert.Equal(t, "firemon", login.JSON(t)["username"])
	assert.Equal(t, "application/json", login.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(login.Header.Get("User-Agent"), "firemon-api-go/"))
}

func TestNew_SessionCookieIsKept(t *testing.T) {
	srv := fmtest.NewServer(t)
	c := srv.Client()

	_, err := c.Versions(context.Background())
	require.NoError(t, err)

	call, ok := srv.LastCall(http.MethodGet, "/securitymanager/api/version")
	require.True(t, ok)
	assert.Contains(t, call.Header.Get("Cookie"), "JSESSIONID=fmtest-session")
}

func TestNew_BadCredentials(t *testing.T) {
	srv := fmtest.NewServer(t)
	cfg := srv.Config()
	cfg.Password = "wrong"

	_, err := firemon.New(context.Background(), cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, firemon.ErrAuthentication)
	assert.Len(t, srv.Calls(http.MethodPost, "/securitymanager/api/authentication/login"), 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := firemon.New(context.Background(), &firemon.Config{Host: "fmos.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid firemon config")

	_, err = firemon.New(context.Background(), nil)
	assert.ErrorIs(t, err, firemon.ErrInvalidArgument)
}

func TestNew_UnverifiedDomainIsKept(t *testing.T) {
	srv := fmtest.NewServer(t)

	c := srv.Client(func(cfg *firemon.Config) { cfg.DomainID = 7 })

	assert.Equal(t, 7, c.DomainID())
	name, _ := c.Domain()
	assert.Empty(t, name)
}

func TestClient_SetDomain(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/securitymanager/api/domain/2", http.StatusOK, map[string]any{
		"id": 2, "name": "Lab", "description": "Lab domain",
	})
	c := srv.Client()
	sm := c.App(firemon.AppSecurityManager)

	require.NoError(t, c.SetDomain(context.Background(), 2))
	assert.Equal(t, 2, c.DomainID())
	name, _ := c.Domain()
	assert.Equal(t, "Lab", name)
	assert.Equal(t, srv.URL+"/securitymanager/api/domain/2", sm.DomainURL())

	err := c.SetDomain(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, firemon.ErrNotFound)
	assert.Equal(t, 3, c.DomainID())

	assert.ErrorIs(t, c.SetDomain(context.Background(), 0), firemon.ErrInvalidArgument)
}

func TestClient_AppURLs(t *testing.T) {
	srv := fmtest.NewServer(t)
	c := srv.Client()

	assert.Equal(t, srv.URL+"/policyplanner/api", c.App(firemon.AppPolicyPlanner).URL())
	assert.Equal(t, srv.URL+"/policyoptimizer/api/domain/1", c.PolicyOptimizer().DomainURL())
	assert.Equal(t, "globalpolicycontroller", c.GPC().Name())
}

func TestApp_Siql(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, "/policyoptimizer/api/siql/ticket/paged-search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ticket{id=1}", r.URL.Query().Get("q"))
		fmtest.WriteJSON(w, http.StatusOK, fmtest.Page([]map[string]any{{"id": 1}}, r))
	})
	c := srv.Client()

	recs, err := c.PolicyOptimizer().Siql(context.Background(), "ticket", "ticket{id=1}")

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].ID())
}
