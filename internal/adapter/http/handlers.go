package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/floodguard/internal/dashboard"
	"github.com/couchcryptid/floodguard/internal/domain"
)

const (
	msgLoadFailed        = "Failed to load data"
	msgInvalidID         = "Invalid panchayat id"
	msgInvalidLimit      = "Invalid limit"
	msgSubscribeRequired = "Email and Panchayat ID are required"
	msgSubscribeFailed   = "Subscription failed"
	msgSubscribed        = "Successfully subscribed to alerts"
	msgAnalysisFailed    = "AI Analysis failed"
	msgInvalidBody       = "Invalid request body"
)

// maxBodyBytes bounds request bodies; analysis payloads carry the full node list.
const maxBodyBytes = 4 << 20

type subscribeRequest struct {
	PanchayatID   any    `json:"panchayat_id"`
	Email         string `json:"email"`
	RiskThreshold string `json:"risk_threshold"`
}

type analyzeRequest struct {
	PanchayatData json.RawMessage `json:"panchayatData"`
}

func (s *Server) handlePanchayats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := s.dashboard.Panchayats(r.Context(), domain.StatusFilter{
		District: q.Get("district"),
		Query:    strings.TrimSpace(q.Get("q")),
	})
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDistrictSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := s.dashboard.DistrictSummaries(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	names, err := s.dashboard.Districts(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "panchayatID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	rows, err := s.dashboard.History(r.Context(), id)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		limit = n
	}
	rows, err := s.dashboard.HighRisk(r.Context(), limit)
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var body subscribeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgSubscribeRequired)
		return
	}

	_, err := s.dashboard.Subscribe(r.Context(), dashboard.SubscribeRequest{
		PanchayatID:   panchayatID(body.PanchayatID),
		Email:         body.Email,
		RiskThreshold: body.RiskThreshold,
	})
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, msgSubscribeRequired)
	case err != nil:
		s.logger.Error("subscribe failed", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, msgSubscribeFailed)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": msgSubscribed})
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	text, err := s.dashboard.Analyze(r.Context(), body.PanchayatData)
	if err != nil {
		s.logger.Error("analysis failed", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, msgAnalysisFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("query failed", "path", r.URL.Path, "error", err, "request_id", requestID(r))
	writeError(w, http.StatusInternalServerError, msgLoadFailed)
}

// panchayatID accepts a JSON number or numeric string. Anything else,
// including zero and fractional numbers, yields 0, which counts as missing.
func panchayatID(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
			return 0
		}
		return int64(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
