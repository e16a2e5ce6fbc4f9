package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	"haplocheck/internal/errors"
)

// RunRequest asks for one haplotype comparison over a server-side file
type RunRequest struct {
	File            string   `json:"file"`
	Sheet           string   `json:"sheet"`
	Markers         []string `json:"markers"`
	Parameters      []string `json:"parameters"`
	AllowPartial    bool     `json:"allow_partial"`
	MinIntersection *int     `json:"min_intersection,omitempty"`
	Alpha           *float64 `json:"alpha,omitempty"`
}

// ScanRequest asks for a single-marker scan; empty markers scans every marker
type ScanRequest struct {
	File         string   `json:"file"`
	Sheet        string   `json:"sheet"`
	Markers      []string `json:"markers"`
	Parameters   []string `json:"parameters"`
	AllowPartial bool     `json:"allow_partial"`
	Alpha        *float64 `json:"alpha,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"storage":        s.repo != nil,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.runSlots.TryAcquire(1) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "too many runs in progress", Code: "BUSY"})
		return
	}
	defer s.runSlots.Release(1)

	ds, err := s.loadDataset(r, req.File, req.Sheet)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg := s.config.Run
	cfg.Markers = req.Markers
	cfg.Parameters = req.Parameters
	cfg.AllowPartialParameters = req.AllowPartial
	if req.MinIntersection != nil {
		cfg.MinIntersection = *req.MinIntersection
	}
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}

	report, err := s.haplo.Run(r.Context(), ds, cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.repo != nil {
		if err := s.repo.SaveReport(r.Context(), report); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.runSlots.TryAcquire(1) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "too many runs in progress", Code: "BUSY"})
		return
	}
	defer s.runSlots.Release(1)

	ds, err := s.loadDataset(r, req.File, req.Sheet)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg := s.config.Scan
	cfg.Markers = req.Markers
	cfg.AllowPartialParameters = req.AllowPartial
	if len(req.Parameters) > 0 {
		cfg.Parameters = req.Parameters
	}
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}

	report, err := s.scans.Run(r.Context(), ds, cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	runs, err := s.repo.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	summary, err := s.repo.GetSummary(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRunSignificance(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	records, err := s.repo.GetSignificance(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) loadDataset(r *http.Request, file, sheet string) (*dataset.Dataset, error) {
	path, err := s.resolvePath(file)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = s.config.Sheet
	}
	table, err := s.loader.Load(r.Context(), path, sheet)
	if err != nil {
		return nil, err
	}
	return dataset.FromTable(table, s.config.Schema)
}

// resolvePath keeps request paths inside DataDir when one is configured
func (s *Server) resolvePath(file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", errors.InvalidInput("file is required")
	}
	if s.config.DataDir == "" {
		return file, nil
	}
	path := filepath.Join(s.config.DataDir, filepath.Clean("/"+file))
	rel, err := filepath.Rel(s.config.DataDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.InvalidInput(fmt.Sprintf("file %q is outside the data directory", file))
	}
	return path, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	} else {
		s.logger.Debug("request rejected: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.Classify(err)})
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
