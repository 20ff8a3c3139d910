package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db_prog_object_migrator/internal/db"
	"db_prog_object_migrator/internal/migrate"
	"db_prog_object_migrator/internal/operation"
)

type fakeAdapter struct {
	pingErr    error
	historyErr error
	appliedErr error
	rows       []db.HistoryRow
	applied    map[string]struct{}

	gotLimit int
}

func (f *fakeAdapter) Engine() string                      { return "fake" }
func (f *fakeAdapter) Ping(ctx context.Context) error      { return f.pingErr }
func (f *fakeAdapter) EnsureCreated(context.Context) error { return nil }
func (f *fakeAdapter) Close() error                        { return nil }

func (f *fakeAdapter) AppliedIDs(context.Context) (map[string]struct{}, error) {
	if f.appliedErr != nil {
		return nil, f.appliedErr
	}
	return f.applied, nil
}

func (f *fakeAdapter) Insert(ctx context.Context, id, name, productVersion string, appliedAt time.Time) error {
	return nil
}

func (f *fakeAdapter) Acquire(ctx context.Context, scope string) (migrate.Lock, error) {
	return nil, errors.New("not used")
}

func (f *fakeAdapter) ExecuteBatch(ctx context.Context, sql string, timeout time.Duration) error {
	return nil
}

func (f *fakeAdapter) History(ctx context.Context, limit int) ([]db.HistoryRow, error) {
	f.gotLimit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.rows, nil
}

func testServer(t *testing.T, adapter db.Adapter, units []migrate.Migration) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New("127.0.0.1:0", logger, adapter, units)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func unit(id string) migrate.Migration {
	return migrate.NewMigration(id, "unit", func(b *operation.Builder) {}, nil)
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func TestHealthOK(t *testing.T) {
	ts := testServer(t, &fakeAdapter{}, nil)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","db":"ok"}`, string(body))
}

func TestHealthReportsUnreachableDB(t *testing.T) {
	ts := testServer(t, &fakeAdapter{pingErr: errors.New("refused")}, nil)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "service_unhealthy")
}

func TestMigrationsReturnsHistory(t *testing.T) {
	applied := time.Date(2024, 3, 12, 10, 15, 0, 0, time.UTC)
	adapter := &fakeAdapter{rows: []db.HistoryRow{
		{ID: "20240312_101500", Name: "InitialSchema", ProductVersion: "1.0.0", AppliedAt: applied},
	}}
	ts := testServer(t, adapter, nil)

	resp, body := get(t, ts, "/api/migrations")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, defaultHistoryLimit, adapter.gotLimit)

	var payload struct {
		Migrations []db.HistoryRow `json:"migrations"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Migrations, 1)
	assert.Equal(t, "20240312_101500", payload.Migrations[0].ID)
}

func TestMigrationsLimitParam(t *testing.T) {
	adapter := &fakeAdapter{}
	ts := testServer(t, adapter, nil)

	resp, _ := get(t, ts, "/api/migrations?limit=5")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, adapter.gotLimit)

	for _, bad := range []string{"0", "-1", "abc"} {
		resp, body := get(t, ts, "/api/migrations?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		assert.Contains(t, string(body), "bad_limit", bad)
	}
}

func TestMigrationsHistoryFailure(t *testing.T) {
	ts := testServer(t, &fakeAdapter{historyErr: errors.New("boom")}, nil)

	resp, body := get(t, ts, "/api/migrations")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "history_unavailable")
}

func TestStatusComputesPending(t *testing.T) {
	adapter := &fakeAdapter{applied: map[string]struct{}{
		"20240101_000000": {},
	}}
	units := []migrate.Migration{unit("20240101_000000"), unit("20240201_000000")}
	ts := testServer(t, adapter, units)

	resp, body := get(t, ts, "/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"applied":1,"pending":["20240201_000000"]}`, string(body))
}

func TestStatusNoPending(t *testing.T) {
	adapter := &fakeAdapter{applied: map[string]struct{}{"20240101_000000": {}}}
	ts := testServer(t, adapter, []migrate.Migration{unit("20240101_000000")})

	resp, body := get(t, ts, "/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"applied":1,"pending":[]}`, string(body))
}

func TestStatusHistoryFailure(t *testing.T) {
	ts := testServer(t, &fakeAdapter{appliedErr: errors.New("boom")}, nil)

	resp, _ := get(t, ts, "/api/status")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUnknownRouteIs404(t *testing.T) {
	ts := testServer(t, &fakeAdapter{}, nil)

	resp, _ := get(t, ts, "/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
