package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haplocheck/adapters/excel"
	"haplocheck/app"
	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	"haplocheck/domain/haplotype"
	"haplocheck/internal"
	"haplocheck/internal/errors"
	"haplocheck/internal/testkit"
	"haplocheck/ports"
)

type memoryRepo struct {
	saved []*haplotype.Report
}

func (m *memoryRepo) SaveReport(_ context.Context, r *haplotype.Report) error {
	m.saved = append(m.saved, r)
	return nil
}

func (m *memoryRepo) ListRuns(_ context.Context, limit, offset int) ([]ports.RunSummary, error) {
	var out []ports.RunSummary
	for _, r := range m.saved {
		out = append(out, ports.RunSummary{ID: r.RunID, Markers: len(r.Markers), Pairings: len(r.Summary)})
	}
	return out, nil
}

func (m *memoryRepo) find(id core.RunID) (*haplotype.Report, error) {
	for _, r := range m.saved {
		if r.RunID == id {
			return r, nil
		}
	}
	return nil, errors.NotFound("run " + id.String())
}

func (m *memoryRepo) GetSummary(_ context.Context, id core.RunID) ([]haplotype.PairSummary, error) {
	r, err := m.find(id)
	if err != nil {
		return nil, err
	}
	return r.Summary, nil
}

func (m *memoryRepo) GetSignificance(_ context.Context, id core.RunID) ([]haplotype.SignificanceRecord, error) {
	r, err := m.find(id)
	if err != nil {
		return nil, err
	}
	return r.Significance, nil
}

func newTestServer(t *testing.T, repo ports.ReportRepository) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := testkit.DefaultCohortConfig()
	cfg.EffectMarker = "rs1800795"
	cfg.EffectSize = 40
	require.NoError(t, excel.WriteTable(filepath.Join(dir, "cohort.csv"), "", testkit.NewCohortGenerator(cfg).GenerateTable()))

	return NewServer(Config{
		DataDir: dir,
		Schema:  dataset.DefaultSchema(),
		Run:     app.DefaultRunConfig(),
		Scan:    app.DefaultScanConfig(),
	}, excel.NewLoader(), repo, internal.NewDiscardLogger())
}

func post(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)))
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := get(s, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["storage"])
}

func TestRun_Succeeds(t *testing.T) {
	s := newTestServer(t, nil)
	minimum := 5
	rec := post(t, s, "/api/runs", RunRequest{
		File:            "cohort.csv",
		Markers:         []string{"rs1800795", "rs1800629"},
		Parameters:      []string{"IL6"},
		MinIntersection: &minimum,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["run_id"])
	assert.Equal(t, []interface{}{"rs1800795", "rs1800629"}, body["markers"])
	assert.Equal(t, []interface{}{"plasma_2_IL6"}, body["parameters"])
}

func TestRun_ErrorStatuses(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		req    interface{}
		status int
		code   string
	}{
		{"one marker", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795"}, Parameters: []string{"IL6"}}, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"unknown marker", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795", "rs404"}, Parameters: []string{"IL6"}}, http.StatusUnprocessableEntity, errors.CodeDataShape},
		{"no parameters found", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795", "rs16944"}, Parameters: []string{"CRP"}}, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"partial parameters", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795", "rs16944"}, Parameters: []string{"IL6", "CRP"}}, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"missing file", RunRequest{File: "absent.csv", Markers: []string{"a", "b"}}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"no file", RunRequest{Markers: []string{"a", "b"}}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown field", map[string]string{"path": "cohort.csv"}, http.StatusBadRequest, errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/runs", tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeBody(t, rec)["code"])
		})
	}
}

func TestRun_PartialParametersAllowed(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/api/runs", RunRequest{
		File:         "cohort.csv",
		Markers:      []string{"rs1800795", "rs16944"},
		Parameters:   []string{"IL6", "CRP"},
		AllowPartial: true,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []interface{}{"CRP"}, decodeBody(t, rec)["missing_parameters"])
}

func TestRun_Busy(t *testing.T) {
	s := newTestServer(t, nil)
	require.True(t, s.runSlots.TryAcquire(DefaultMaxConcurrentRuns))
	defer s.runSlots.Release(DefaultMaxConcurrentRuns)

	rec := post(t, s, "/api/runs", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795", "rs16944"}, Parameters: []string{"IL6"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResolvePath(t *testing.T) {
	s := &Server{config: Config{DataDir: "/data"}}

	path, err := s.resolvePath("cohort.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "/data/cohort.xlsx", path)

	path, err = s.resolvePath("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "/data/etc/passwd", path)

	_, err = s.resolvePath("  ")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestScan_Succeeds(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/api/scans", ScanRequest{File: "cohort.csv"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.EqualValues(t, 4, body["scanned"])
}

func TestRunStorage(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestServer(t, repo)

	rec := post(t, s, "/api/runs", RunRequest{File: "cohort.csv", Markers: []string{"rs1800795", "rs16944"}, Parameters: []string{"IL6"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, repo.saved, 1)
	id := repo.saved[0].RunID.String()

	rec = get(s, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []ports.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID.String())

	assert.Equal(t, http.StatusOK, get(s, "/api/runs/"+id+"/summary").Code)
	assert.Equal(t, http.StatusOK, get(s, "/api/runs/"+id+"/significance").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/runs/not-a-uuid/summary").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/runs/"+core.NewRunID().String()+"/summary").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/runs?limit=-1").Code)
}

func TestRunListing_WithoutStorage(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, get(s, "/api/runs").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/runs/x/summary").Code)
}
