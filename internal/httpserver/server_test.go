package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/fingerprint"
	"github.com/neoatlantis/na-gribtools/internal/interfaces/mock"
	"github.com/neoatlantis/na-gribtools/internal/models"
	"github.com/neoatlantis/na-gribtools/internal/resolver"
	"github.com/neoatlantis/na-gribtools/internal/retention"
	"github.com/neoatlantis/na-gribtools/internal/schedule"
)

type serverFixture struct {
	index  *mock.MockArchiveIndex
	server *Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	clock, err := schedule.NewClock(6*time.Hour, 3*time.Hour, time.Time{})
	require.NoError(t, err)
	policy, err := retention.NewPolicy(9*time.Hour, 6*time.Hour, 3*time.Hour)
	require.NoError(t, err)

	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)

	index := mock.NewMockArchiveIndex(ctrl)
	shape := mock.NewMockShapeSource(ctrl)
	shape.EXPECT().Current().Return(manifest.Current()).AnyTimes()

	res := resolver.New(resolver.Params{
		Clock:           clock,
		Policy:          policy,
		Index:           index,
		Shape:           shape,
		Builder:         mock.NewMockArtifactBuilder(ctrl),
		ChecksumKey:     "v1",
		StaleBuildAfter: 45 * time.Minute,
		Logger:          zap.NewNop(),
	})

	return &serverFixture{
		index:  index,
		server: NewServer(res, index, zap.NewNop()),
	}
}

func (f *serverFixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.server.createRouter().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleStatus(t *testing.T) {
	f := newServerFixture(t)

	now := time.Now()
	target, ok := mustClock(t).MostRecentAvailable(now)
	require.True(t, ok)

	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)
	completed := now.UTC()
	f.index.EXPECT().ReadEntry(gomock.Any(), target).Return(&models.ArchiveEntry{
		Release:     target,
		Fingerprint: fingerprint.Fingerprint("v1", manifest.Current()),
		Status:      models.BuildStatusComplete,
		BuildID:     "build-1",
		CreatedAt:   now.UTC(),
		CompletedAt: &completed,
	}, nil)

	rec := f.do(t, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool   `json:"success"`
		Decision string `json:"decision"`
		Target   string `json:"target"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, string(models.DecisionReuse), body.Decision)
}

func TestHandleEntries(t *testing.T) {
	f := newServerFixture(t)

	release, err := models.ParseReleaseIdentifier("2017120300")
	require.NoError(t, err)
	f.index.EXPECT().ListEntries(gomock.Any()).Return([]models.ArchiveEntry{
		{Release: release, Status: models.BuildStatusComplete, BuildID: "build-1"},
	}, nil)

	rec := f.do(t, http.MethodGet, "/entries")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body entriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "build-1", body.Entries[0].BuildID)
}

func TestHandleEntriesError(t *testing.T) {
	f := newServerFixture(t)
	f.index.EXPECT().ListEntries(gomock.Any()).Return(nil, assert.AnError)

	rec := f.do(t, http.MethodGet, "/entries")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestHandleSweep(t *testing.T) {
	f := newServerFixture(t)
	f.index.EXPECT().ListEntries(gomock.Any()).Return(nil, nil)

	rec := f.do(t, http.MethodPost, "/sweep")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body sweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Evicted)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/reconcile")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func mustClock(t *testing.T) *schedule.Clock {
	t.Helper()
	clock, err := schedule.NewClock(6*time.Hour, 3*time.Hour, time.Time{})
	require.NoError(t, err)
	return clock
}
