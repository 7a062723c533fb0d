package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstremedia/pi-overlay-data/history"
	"github.com/ekstremedia/pi-overlay-data/overlay"
)

type testItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (i testItem) Ref() string         { return i.ID }
func (i testItem) OverlayLine() string { return i.Text }

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(0, t.TempDir(), nil)
	rec := get(t, s, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestSnapshotEndpoints(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "ships_current.json"),
		[]byte(`{"provider": "ships", "count": 1}`), 0o644))

	s := NewServer(0, dir, nil)

	rec := get(t, s, "/api/ships")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"provider": "ships", "count": 1}`, rec.Body.String())

	rec = get(t, s, "/api/aurora")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverlayEndpoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "combined_overlay.txt"),
		[]byte("NORDKAPP (1) 12.5 kts, north"), 0o644))

	s := NewServer(0, dir, nil)
	rec := get(t, s, "/api/overlay")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "NORDKAPP (1) 12.5 kts, north", rec.Body.String())
}

func TestHistoryEndpoint(t *testing.T) {
	dir := t.TempDir()
	store, err := history.Open(filepath.Join(dir, "overlay.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	data := overlay.NewData("ships", time.Now().UTC(), []overlay.Item{
		testItem{ID: "257000001", Text: "NORDKAPP (257000001) 12.5 kts, north"},
	})
	require.NoError(t, store.RecordCycle(data))

	s := NewServer(0, dir, store)

	rec := get(t, s, "/api/history/ships?hours=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Provider  string             `json:"provider"`
		Hours     int                `json:"hours"`
		Count     int                `json:"count"`
		Sightings []history.Sighting `json:"sightings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ships", resp.Provider)
	assert.Equal(t, 2, resp.Hours)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "257000001", resp.Sightings[0].Ref)

	rec = get(t, s, "/api/history/ships?hours=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/history/aurora")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
}

func TestHistoryDisabled(t *testing.T) {
	s := NewServer(0, t.TempDir(), nil)
	rec := get(t, s, "/api/history/ships")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
