package firemon_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/firemon/fmtest"
)

const devicePath = "/securitymanager/api/domain/1/device"

func devices(n int) []map[string]any {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{"id": i, "name": fmt.Sprintf("fw-%03d", i)}
	}
	return items
}

// noKeepAlive keeps every attempt on its own connection so that closed
// connections are not retried by the transport itself.
func noKeepAlive(cfg *firemon.Config) {
	cfg.HTTPClient = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

func dropConnection(t *testing.T, w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	require.True(t, ok)
	conn, _, err := hj.Hijack()
	require.NoError(t, err)
	conn.Close()
}

func TestRequest_List_FetchesAllPagesInOrder(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, devices(250))
	c := srv.Client()

	recs, err := c.NewRequest(srv.URL+devicePath).List(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, recs, 250)
	for i, rec := range recs {
		assert.Equal(t, i, rec.ID())
	}

	calls := srv.Calls(http.MethodGet, devicePath)
	require.Len(t, calls, 3)
	for _, call := range calls {
		assert.Equal(t, "100", call.Query["pageSize"][0])
	}
}

func TestRequest_Get_SinglePage(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, devices(3))
	c := srv.Client()

	v, err := c.NewRequest(srv.URL + devicePath).Get(context.Background(), nil)

	require.NoError(t, err)
	assert.Len(t, v, 3)
	assert.Len(t, srv.Calls(http.MethodGet, devicePath), 1)
}

func TestRequest_Get_EmptyResults(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, devicePath, http.StatusOK, map[string]any{"total": 0, "results": []any{}})
	c := srv.Client()

	recs, err := c.NewRequest(srv.URL+devicePath).List(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRequest_Get_ObjectWithoutResults(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, devicePath+"/5", http.StatusOK, map[string]any{"id": 5, "name": "edge"})
	c := srv.Client()

	v, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("/5")).Get(context.Background(), nil)

	require.NoError(t, err)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "edge", obj["name"])
}

func TestRequest_RetriesTransportErrors(t *testing.T) {
	srv := fmtest.NewServer(t)
	var n int32
	srv.Handle(http.MethodGet, devicePath, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) < 3 {
			dropConnection(t, w)
			return
		}
		fmtest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1})
	})
	c := srv.Client(noKeepAlive)

	rec, err := c.NewRequest(srv.URL+devicePath).Record(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.ID())
	assert.Len(t, srv.Calls(http.MethodGet, devicePath), 3)
}

func TestRequest_GivesUpAfterMaxAttempts(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, devicePath, func(w http.ResponseWriter, r *http.Request) {
		dropConnection(t, w)
	})
	c := srv.Client(noKeepAlive)

	_, err := c.NewRequest(srv.URL+devicePath).Record(context.Background(), nil)

	require.Error(t, err)
	assert.False(t, firemon.IsRequestError(err))
	assert.Len(t, srv.Calls(http.MethodGet, devicePath), 3)
}

func TestRequest_DoesNotRetryHTTPErrors(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleJSON(http.MethodGet, devicePath, http.StatusInternalServerError, map[string]any{"message": "boom"})
	c := srv.Client()

	_, err := c.NewRequest(srv.URL+devicePath).List(context.Background(), nil)

	require.Error(t, err)
	var re *firemon.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	assert.Equal(t, `The request failed with code 500 Internal Server Error: {"message":"boom"}`, re.Error())
	assert.Len(t, srv.Calls(http.MethodGet, devicePath), 1)
}

func TestRequest_NotFound(t *testing.T) {
	srv := fmtest.NewServer(t)
	c := srv.Client()

	_, err := c.NewRequest(srv.URL+"/securitymanager/api/nothing").Record(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, firemon.ErrNotFound)
	assert.Equal(t, "The requested url: "+srv.URL+"/securitymanager/api/nothing could not be found.", err.Error())
	assert.True(t, firemon.IsNotFound(err))
}

func TestRequest_ErrorWithoutJSON(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodPut, devicePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "<html>bad</html>")
	})
	c := srv.Client()

	_, err := c.NewRequest(srv.URL+devicePath).Put(context.Background(), firemon.JSONBody(map[string]any{"id": 1}))

	require.Error(t, err)
	assert.Equal(t,
		"The request failed with code 400 Bad Request but more specific details were not returned in json.",
		err.Error())
	assert.True(t, firemon.IsRequestError(err, http.StatusBadRequest))
	assert.False(t, firemon.IsRequestError(err, http.StatusConflict))
}

func TestRequest_Delete(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleStatus(http.MethodDelete, devicePath+"/9", http.StatusNoContent)
	c := srv.Client()

	err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("9")).Delete(context.Background())

	require.NoError(t, err)
	call, _ := srv.LastCall(http.MethodDelete, devicePath+"/9")
	assert.Equal(t, "application/json", call.Header.Get("Accept"))
}

func TestRequest_PostMultipart(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodPost, devicePath+"/1/rev", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "IMPORT", r.URL.Query().Get("action"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "config.txt", hdr.Filename)
		assert.Equal(t, "hostname fw1", string(data))
		fmtest.WriteJSON(w, http.StatusOK, map[string]any{"id": 77})
	})
	c := srv.Client()

	resp, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("1/rev"), firemon.WithParam("action", "IMPORT")).
		Post(context.Background(), firemon.MultipartBody(nil, firemon.File{
			Field: "file", Name: "config.txt", Content: []byte("hostname fw1"),
		}))

	require.NoError(t, err)
	rec, err := resp.Record()
	require.NoError(t, err)
	assert.Equal(t, 77, rec.ID())
}

func TestRequest_HeadersOverrideDefaults(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodPut, devicePath+"/apa", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, "<graphml/>")
	})
	c := srv.Client()

	resp, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("apa"), firemon.WithHeader("Accept", "application/xml")).
		Put(context.Background(), firemon.JSONBody(map[string]any{}))

	require.NoError(t, err)
	assert.Equal(t, "<graphml/>", string(resp.Body))
	assert.False(t, resp.IsJSON())
	call, _ := srv.LastCall(http.MethodPut, devicePath+"/apa")
	assert.Equal(t, "application/xml", call.Header.Get("Accept"))
	assert.Equal(t, "application/json", call.Header.Get("Content-Type"))
}

func TestRequest_TranscodesLatin1(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, devicePath+"/3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=iso-8859-1")
		_, _ = w.Write([]byte("{\"name\":\"Caf\xe9\"}"))
	})
	c := srv.Client()

	rec, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("3")).Record(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "Café", rec.Name())
}

func TestRequest_ContentHasNoPagingParams(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.Handle(http.MethodGet, devicePath+"/1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte{0x50, 0x4b, 0x03, 0x04, 0xff})
	})
	c := srv.Client()

	data, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("1/export")).Content(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04, 0xff}, data)
}

func TestRequest_Count(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, devices(42))
	c := srv.Client()

	n, err := c.NewRequest(srv.URL + devicePath).Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, n)
	call, _ := srv.LastCall(http.MethodGet, devicePath)
	assert.Empty(t, call.Query)
}

func TestRequest_EmptyBodyValue(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandleStatus(http.MethodPost, devicePath+"/1/manualretrieval", http.StatusNoContent)
	c := srv.Client()

	resp, err := c.NewRequest(srv.URL+devicePath, firemon.WithKey("1/manualretrieval")).Post(context.Background(), nil)
	require.NoError(t, err)

	v, err := resp.Value()
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.True(t, resp.Empty())
}

func TestRequest_CanceledContext(t *testing.T) {
	srv := fmtest.NewServer(t)
	srv.HandlePaged(http.MethodGet, devicePath, devices(1))
	c := srv.Client()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.NewRequest(srv.URL+devicePath).List(ctx, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_RateLimit_DelaysPastBurst(t *testing.T) {
	srv := fmtest.NewServer(t)
	// Connecting spends 3 of the 10 burst tokens.
	c := srv.Client(func(cfg *firemon.Config) { cfg.RateLimit = 10 })
	versionURL := srv.URL + "/securitymanager/api/version"

	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := c.NewRequest(versionURL).Record(context.Background(), nil)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRequest_RateLimit_CanceledWhileWaiting(t *testing.T) {
	srv := fmtest.NewServer(t)
	c := srv.Client(func(cfg *firemon.Config) { cfg.RateLimit = 5 })
	versionURL := srv.URL + "/securitymanager/api/version"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = c.NewRequest(versionURL).Record(ctx, nil)
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "rate limiter")
	assert.Less(t, time.Since(start), time.Second)
}
