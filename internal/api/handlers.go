package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/statuslog/internal/codec"
	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/roster"
	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/validation"
)

// Action names accepted by POST /actions/{action}.
const (
	ActionAddSubject    = "add-subject"
	ActionRemoveSubject = "remove-subject"
	ActionUpdateRecord  = "update-record"
	ActionMergeRecords  = "merge-records"
	ActionUpdateSeasons = "update-seasons"
	ActionCarryForward  = "carry-forward"
)

// maxBody limits action payloads.
const maxBody = 8 << 20

// LogResponse is the JSON form of GET /log.
type LogResponse struct {
	Version store.Version `json:"version"`
	Entries []ir.Entry    `json:"entries"`
}

// SubjectRequest is the payload of add-subject and remove-subject.
type SubjectRequest struct {
	Subject string `json:"subject"`
}

// UpdateRecordRequest is the payload of update-record.
type UpdateRecordRequest struct {
	Key    string    `json:"key"`
	Record ir.Record `json:"record"`
}

// MergeRecordsRequest is the payload of merge-records.
type MergeRecordsRequest struct {
	Entries []ir.Entry `json:"entries"`
}

// UpdateSeasonsRequest is the payload of update-seasons.
type UpdateSeasonsRequest struct {
	Seasons []roster.Season `json:"seasons"`
}

// CarryForwardRequest is the payload of carry-forward. Without AsOf the
// run fills in today.
type CarryForwardRequest struct {
	AsOf *ir.Date `json:"asOf,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": ir.ToolVersion,
		"format":  ir.FormatVersion,
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if s.opts.CarryForwardOnRead {
		if _, err := s.CarryForward(r.Context(), s.svc.Today().AddDays(-1)); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}
	log, version, err := s.svc.Log(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("ETag", fmt.Sprintf("%q", version))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(codec.Encode(log))
		return
	}
	writeJSON(w, http.StatusOK, LogResponse{Version: version, Entries: log.Entries()})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.Config(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.svc.Seasons(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if seasons == nil {
		seasons = []roster.Season{}
	}
	writeJSON(w, http.StatusOK, seasons)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var date ir.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := ir.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationError, err.Error(),
				[]validation.FieldError{{Field: "date", Reason: err.Error()}})
			return
		}
		date = d
	}
	res, err := s.svc.Status(r.Context(), chi.URLParam(r, "subject"), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := chi.URLParam(r, "action")

	var (
		out any
		err error
	)
	switch action {
	case ActionAddSubject:
		var req SubjectRequest
		if !s.decode(w, r, &req) {
			return
		}
		out, err = s.svc.AddSubject(ctx, req.Subject)
	case ActionRemoveSubject:
		var req SubjectRequest
		if !s.decode(w, r, &req) {
			return
		}
		out, err = s.svc.RemoveSubject(ctx, req.Subject)
	case ActionUpdateRecord:
		var req UpdateRecordRequest
		if !s.decode(w, r, &req) {
			return
		}
		out, err = s.svc.UpdateRecord(ctx, req.Key, req.Record)
	case ActionMergeRecords:
		var req MergeRecordsRequest
		if !s.decode(w, r, &req) {
			return
		}
		out, err = s.svc.MergeRecords(ctx, req.Entries)
	case ActionUpdateSeasons:
		var req UpdateSeasonsRequest
		if !s.decode(w, r, &req) {
			return
		}
		out, err = s.svc.UpdateSeasons(ctx, req.Seasons)
	case ActionCarryForward:
		var req CarryForwardRequest
		if !s.decode(w, r, &req) {
			return
		}
		asOf := s.svc.Today().AddDays(-1)
		if req.AsOf != nil {
			asOf = *req.AsOf
		}
		out, err = s.CarryForward(ctx, asOf)
	default:
		writeError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("unknown action %q", action), nil)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON payload into v, rejecting unknown fields. An empty
// body leaves v at its zero value. It writes the error response itself
// and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON payload: "+err.Error(), nil)
		return false
	}
	return true
}
