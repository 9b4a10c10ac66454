package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/search"
	"github.com/hyperjump/kujo/internal/storage"
)

const recentIngestRuns = 5

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (*models.SearchRequest, bool) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := req.Validate(s.config.Retrieval.DefaultK, s.config.Retrieval.MaxK); err != nil {
		s.respondErr(w, err)
		return nil, false
	}
	return &req, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("k", req.K))
	result, err := s.engine.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	if req.Stats {
		stats := search.ComputeStatistics(result)
		result.Stats = &stats
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	summary, err := s.engine.Answer(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("answer failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}
	result, err := s.engine.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	var stats *models.Stats
	if req.Stats {
		st := search.ComputeStatistics(result)
		stats = &st
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", search.ExportFileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	if err := search.WriteExport(w, search.NewExport(result, stats)); err != nil {
		s.logger.Warn("export write failed", zap.Error(err))
	}
}

type addRecordsRequest struct {
	Records []*models.Record `json:"records"`
	Source  string           `json:"source,omitempty"`
}

func (s *Server) handleAddRecords(w http.ResponseWriter, r *http.Request) {
	var req addRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Records) == 0 {
		s.respondError(w, http.StatusBadRequest, "records are required")
		return
	}
	for i, rec := range req.Records {
		if rec == nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("record %d is null", i))
			return
		}
		if rec.Metadata == nil {
			rec.Metadata = models.Metadata{}
		}
	}
	source := req.Source
	if source == "" {
		source = "api"
	}
	s.logger.Debug("add records request", zap.Int("records", len(req.Records)), zap.String("source", source))
	report, err := s.indexer.IngestRecords(r.Context(), source, req.Records)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.collection.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	rec.Embedding = nil
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !s.engine.Connected() {
		status = "not connected"
		code = http.StatusServiceUnavailable
	}
	s.respondJSON(w, code, map[string]string{"status": status})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"collection": s.collection.Info(),
		"connected":  s.engine.Connected(),
	}
	collections, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("status: list collections failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	resp["collections"] = collections

	runs, err := s.store.Storage().ListIngestRuns(ctx, s.collection.Name(), recentIngestRuns)
	if err == nil {
		resp["ingest_runs"] = runs
	}
	if usage, err := storage.DataDirUsage(s.store.Dir()); err == nil {
		resp["disk_usage"] = usage
	}

	cfg := s.config
	resp["config"] = map[string]interface{}{
		"storage_path":         s.store.Dir(),
		"backend":              cfg.Storage.Backend,
		"embedding_provider":   cfg.Embedding.Provider,
		"embedding_dimensions": s.store.Embedder().Dimensions(),
		"chunk_size":           cfg.Ingest.ChunkSize,
		"chunk_overlap":        cfg.Ingest.ChunkOverlap,
		"default_k":            cfg.Retrieval.DefaultK,
		"max_k":                cfg.Retrieval.MaxK,
	}
	if s.watch != nil {
		resp["watch"] = map[string]interface{}{
			"directories": s.watch.Directories(),
			"stats":       s.watch.Stats(),
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidQuery),
		errors.Is(err, models.ErrSchemaViolation),
		errors.Is(err, models.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRecordNotFound),
		errors.Is(err, models.ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCollectionExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmbeddingFailure):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrNotConnected),
		errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"error": err.Error()}
	var be *models.BatchError
	if errors.As(err, &be) {
		body["batch"] = be.Batch
		body["total_batches"] = be.Total
	}
	s.respondJSON(w, statusFor(err), body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
