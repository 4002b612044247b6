package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librettist/config"
	"librettist/internal/domain"
	"librettist/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0"},
		Storage: config.StorageConfig{Type: "local", LibraryDir: t.TempDir()},
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv
}

func seedLibrary(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	base := &domain.BaseLibretto{
		Version: "1.0",
		Opera: domain.Opera{
			Title:    "Le nozze di Figaro",
			Composer: "Wolfgang Amadeus Mozart",
			Language: "it",
		},
		Numbers: []domain.MusicalNumber{
			{
				NumberID: "no-1",
				Label:    "No. 1 Duettino",
				Type:     domain.NumberDuet,
				Act:      "1",
				Segments: []domain.Segment{
					{SegmentID: "no-1-001", Character: "FIGARO", Text: "Cinque, dieci, venti, trenta"},
					{SegmentID: "no-1-002", Character: "SUSANNA", Text: "Ora si ch'io son contenta"},
				},
			},
		},
	}
	require.NoError(t, storage.WriteJSON(ctx, store, "mozart/figaro/base.libretto.json", base))

	overlay := &domain.TimingOverlay{
		Version:         "1.0",
		BaseLibrettoRef: "base.libretto.json",
		Recording:       domain.Recording{Conductor: "Carlo Maria Giulini", AlbumTitle: "Figaro (Giulini)"},
		TrackTimings: []domain.TrackTiming{
			{
				TrackTitle:      `No. 1 Duettino "Cinque, dieci"`,
				DiscNumber:      1,
				TrackNumber:     1,
				DurationSeconds: 180,
				NumberIDs:       []string{"no-1"},
			},
		},
	}
	require.NoError(t, storage.WriteJSON(ctx, store, "mozart/figaro/giulini.overlay.json", overlay))
}

func doRequest(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := doRequest(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, 200, w.Code)
}

func TestResolveStageJob(t *testing.T) {
	srv := newTestServer(t)
	seedLibrary(t, srv.store)

	w := doRequest(srv, http.MethodPost, "/api/v1/pipeline/resolve", gin.H{
		"overlay_key": "mozart/figaro/giulini.overlay.json",
	})
	require.Equal(t, 202, w.Code)

	var accepted StageAcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)
	assert.Equal(t, "stage started", accepted.Message)

	require.Eventually(t, func() bool {
		status, err := srv.jobManager.GetJob(accepted.JobID)
		return err == nil && status.Status == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, srv.store.Exists(context.Background(), "mozart/figaro/giulini.resolved.overlay.json"))

	var resolved domain.TimingOverlay
	require.NoError(t, storage.ReadJSON(context.Background(), srv.store, "mozart/figaro/giulini.resolved.overlay.json", &resolved))
	assert.Equal(t, "no-1-001", resolved.TrackTimings[0].StartSegmentID)
}

func TestStageUnknownOverlay(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/v1/pipeline/estimate", gin.H{
		"overlay_key": "missing.overlay.json",
	})
	require.Equal(t, 404, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "overlay not found")
}

func TestStageInvalidRequest(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/v1/pipeline/resolve", gin.H{})
	assert.Equal(t, 400, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	seedLibrary(t, srv.store)

	w := doRequest(srv, http.MethodPost, "/api/v1/validate", gin.H{
		"overlay_key": "mozart/figaro/giulini.overlay.json",
	})
	require.Equal(t, 200, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, 1, resp.Coverage.Covered)

	w = doRequest(srv, http.MethodPost, "/api/v1/validate", gin.H{
		"overlay_key": "missing.overlay.json",
	})
	assert.Equal(t, 404, w.Code)
}

func TestLibraryListing(t *testing.T) {
	srv := newTestServer(t)
	seedLibrary(t, srv.store)

	w := doRequest(srv, http.MethodGet, "/api/v1/librettos", nil)
	require.Equal(t, 200, w.Code)
	var librettos struct {
		Librettos []string `json:"librettos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &librettos))
	assert.Equal(t, []string{"mozart/figaro/base.libretto.json"}, librettos.Librettos)

	w = doRequest(srv, http.MethodGet, "/api/v1/overlays", nil)
	require.Equal(t, 200, w.Code)
	var overlays struct {
		Overlays []string `json:"overlays"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overlays))
	assert.Equal(t, []string{"mozart/figaro/giulini.overlay.json"}, overlays.Overlays)
}

func TestGetDocument(t *testing.T) {
	srv := newTestServer(t)
	seedLibrary(t, srv.store)

	w := doRequest(srv, http.MethodGet, "/api/v1/documents/mozart/figaro/base.libretto.json", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Le nozze di Figaro")

	w = doRequest(srv, http.MethodGet, "/api/v1/documents/missing.json", nil)
	assert.Equal(t, 404, w.Code)
}

func TestJobEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(srv, http.MethodGet, "/api/v1/jobs/unknown", nil)
	assert.Equal(t, 404, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, 200, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/v1/jobs/unknown/cancel", nil)
	assert.Equal(t, 404, w.Code)
}

