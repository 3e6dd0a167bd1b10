package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/internal/httpx"
)

func fastPolicy() httpx.Policy {
	p := httpx.Default()
	p.BaseWait = time.Millisecond
	return p
}

func getReq(t *testing.T, url string) func() (*http.Request, error) {
	t.Helper()
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoJSON_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := httpx.DoJSON(context.Background(), srv.Client(), nil, fastPolicy(), getReq(t, srv.URL), &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoJSON_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`bad token`))
	}))
	defer srv.Close()

	err := httpx.DoJSON(context.Background(), srv.Client(), nil, fastPolicy(), getReq(t, srv.URL), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error 400")
	assert.Contains(t, err.Error(), "bad token")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoJSON_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := httpx.DoJSON(context.Background(), srv.Client(), nil, fastPolicy(), getReq(t, srv.URL), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	// intento inicial + 3 reintentos
	assert.Equal(t, int32(4), calls.Load())
}

func TestDoJSON_BuildRunsPerAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var builds int
	build := func() (*http.Request, error) {
		builds++
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	}

	var out map[string]any
	err := httpx.DoJSON(context.Background(), srv.Client(), nil, fastPolicy(), build, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, builds)
}

func TestTransient(t *testing.T) {
	assert.True(t, httpx.Transient(0, assert.AnError))
	assert.True(t, httpx.Transient(http.StatusTooManyRequests, nil))
	assert.True(t, httpx.Transient(http.StatusBadGateway, nil))
	assert.False(t, httpx.Transient(http.StatusBadRequest, nil))
	assert.False(t, httpx.Transient(http.StatusOK, nil))
}
