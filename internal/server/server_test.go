package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/provider/httpapi"
	"github.com/iudanet/clipsync/internal/server/storage"
	"github.com/iudanet/clipsync/internal/server/storage/sqlite"
	"github.com/iudanet/clipsync/pkg/api"
)

const testSecret = "relay-secret"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg Config) (*Server, *sqlite.Storage, *clockwork.FakeClock) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	clock := clockwork.NewFakeClockAt(testNow)
	cfg.TokenSecret = testSecret
	s, err := New(cfg, store, clock, testLogger())
	require.NoError(t, err)
	t.Cleanup(s.stop)
	return s, store, clock
}

func newClient(t *testing.T, url, deviceID string) *httpapi.Provider {
	t.Helper()
	p, err := httpapi.New(httpapi.Config{
		URL:             url,
		TokenSecret:     testSecret,
		DeviceID:        deviceID,
		Platform:        "linux",
		InitMaxElapsed:  time.Second,
		InitialInterval: 10 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)
	return p
}

func wireItem(id, deviceID string, ts int64, version int) *api.SyncItem {
	return &api.SyncItem{
		Origin:    api.Origin{DeviceID: deviceID, Platform: "linux", ProtocolVersion: "1.0.0"},
		ID:        id,
		Type:      "clipboard",
		Action:    "create",
		DeviceID:  deviceID,
		Checksum:  strings.Repeat("a", 64),
		Payload:   []byte(`{"text":"` + id + `"}`),
		Timestamp: ts,
		Version:   version,
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{}, nil, clockwork.NewFakeClock(), testLogger())
	assert.Error(t, err)
}

func TestServer_RelayBetweenDevices(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newTestServer(t, Config{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	laptop := newClient(t, ts.URL, "laptop")
	phone := newClient(t, ts.URL, "phone")

	require.NoError(t, laptop.Initialize(ctx))
	require.NoError(t, phone.Initialize(ctx))

	require.NoError(t, laptop.SyncItem(ctx, wireItem("i2", "laptop", 2000, 1)))
	require.NoError(t, laptop.SyncItem(ctx, wireItem("i1", "laptop", 1000, 1)))
	// Повтор той же отправки идемпотентен
	require.NoError(t, laptop.SyncItem(ctx, wireItem("i1", "laptop", 1000, 2)))

	items, err := phone.PullChanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, 2, items[0].Version)
	assert.Equal(t, "i2", items[1].ID)
	assert.Equal(t, []byte(`{"text":"i2"}`), items[1].Payload)

	items, err = phone.PullChanges(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i2", items[0].ID)

	devices, err := store.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "laptop", devices[0].ID)
	assert.Equal(t, "1.0.0", devices[0].ProtocolVersion)
	assert.Equal(t, 2, devices[0].LastVersion)
	assert.Equal(t, "phone", devices[1].ID)
	assert.Equal(t, testNow.UnixMilli(), devices[1].LastSeen)
}

func TestServer_ForeignItemRejected(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestServer(t, Config{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	phone := newClient(t, ts.URL, "phone")
	err := phone.SyncItem(ctx, wireItem("i1", "laptop", 1000, 1))
	require.Error(t, err)

	var se *httpapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestServer_Devices(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestServer(t, Config{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	require.NoError(t, newClient(t, ts.URL, "laptop").SyncItem(ctx, wireItem("i1", "laptop", 1000, 1)))

	token, err := auth.IssueDeviceToken(auth.TokenConfig{Secret: []byte(testSecret)}, "phone", "android")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/devices", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.DevicesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Devices, 1)
	assert.Equal(t, "laptop", body.Devices[0].ID)
}

func TestServer_Unauthorized(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestServer(t, Config{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	p, err := httpapi.New(httpapi.Config{
		URL:             ts.URL,
		TokenSecret:     "wrong-secret",
		DeviceID:        "laptop",
		InitMaxElapsed:  time.Second,
		InitialInterval: 10 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	// 401 не повторяется
	err = p.Initialize(ctx)
	require.Error(t, err)

	resp, err := http.Get(ts.URL + "/api/v1/changes")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RateLimit(t *testing.T) {
	s, _, _ := newTestServer(t, Config{RateLimit: 2, RateWindow: time.Minute})
	h := s.Handler()

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	// без токена первые два запроса доходят до auth, третий режется лимитом
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestServer_Prune(t *testing.T) {
	ctx := context.Background()
	s, store, clock := newTestServer(t, Config{Retention: time.Hour})

	_, _, err := store.PutItem(ctx, wireItem("old", "laptop", 1000, 1), clock.Now().Add(-2*time.Hour).UnixMilli())
	require.NoError(t, err)
	_, _, err = store.PutItem(ctx, wireItem("new", "laptop", 2000, 1), clock.Now().UnixMilli())
	require.NoError(t, err)

	s.Prune(ctx)

	_, err = store.GetItem(ctx, "old")
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	_, err = store.GetItem(ctx, "new")
	assert.NoError(t, err)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, store, clock := newTestServer(t, Config{Retention: time.Hour, PruneInterval: time.Minute})

	_, _, err := store.PutItem(context.Background(), wireItem("old", "laptop", 1000, 1), clock.Now().Add(-2*time.Hour).UnixMilli())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	// Тикер очистки (и тикер rate limiter) ожидают на фейковых часах
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool {
		_, err := store.GetItem(context.Background(), "old")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
