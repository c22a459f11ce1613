package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/utils/async"
	"github.com/taller-iot/marcaje/pkg/utils/errutil"
)

// statusFromError maps business sentinels to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, model.ErrBadgeClaimed), errors.Is(err, model.ErrBadgeNotOwned),
		errors.Is(err, model.ErrAlreadyCheckedIn):
		return http.StatusConflict
	case errors.Is(err, model.ErrOutsideWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(r *http.Request, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func respondError(r *http.Request, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
}

func workerIDParam(r *http.Request) (types.WorkerID, error) {
	raw := chi.URLParam(r, "workerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid worker ID", goerr.V("raw", raw))
	}
	return types.WorkerID(id), nil
}

// timeRangeQuery parses from/to query parameters (RFC 3339), defaulting to
// the last 24 hours.
func timeRangeQuery(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, goerr.Wrap(err, "invalid from parameter", goerr.V("raw", raw))
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, goerr.Wrap(err, "invalid to parameter", goerr.V("raw", raw))
		}
		to = parsed
	}

	return from, to, nil
}

// --- badges ---

func (s *Server) listBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.uc.Badge.List(r.Context())
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, badges)
}

func (s *Server) listUnclaimedBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.uc.Badge.ListUnclaimed(r.Context())
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, badges)
}

type badgeOwnerRequest struct {
	WorkerID types.WorkerID `json:"worker_id"`
}

func (s *Server) claimBadge(w http.ResponseWriter, r *http.Request) {
	var req badgeOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	id := types.NormalizeBadgeID(chi.URLParam(r, "badgeID"))
	badge, err := s.uc.Badge.Claim(r.Context(), id, req.WorkerID)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, badge)
}

func (s *Server) releaseBadge(w http.ResponseWriter, r *http.Request) {
	var req badgeOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	id := types.NormalizeBadgeID(chi.URLParam(r, "badgeID"))
	badge, err := s.uc.Badge.Release(r.Context(), id, req.WorkerID)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, badge)
}

// --- workers ---

type createWorkerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	RestrictedArea bool   `json:"restricted_area"`
}

func (s *Server) createWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	worker, err := s.uc.Worker.Create(r.Context(), &model.Worker{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		Phone:          req.Phone,
		RestrictedArea: req.RestrictedArea,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusCreated, worker)
}

func (s *Server) listWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.uc.Worker.List(r.Context())
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, workers)
}

func (s *Server) getWorker(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	worker, err := s.uc.Worker.Get(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, worker)
}

func (s *Server) updateWorker(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	worker, err := s.uc.Worker.Get(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}

	worker.FirstName = req.FirstName
	worker.LastName = req.LastName
	worker.DocumentNumber = req.DocumentNumber
	worker.Email = req.Email
	worker.Phone = req.Phone
	worker.RestrictedArea = req.RestrictedArea

	updated, err := s.uc.Worker.Update(r.Context(), worker)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, updated)
}

func (s *Server) deprovisionWorker(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	worker, err := s.uc.Worker.Deprovision(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, worker)
}

// enrollWorker starts fingerprint enrollment in the background. The device
// handshake can take minutes (the worker has to walk to the sensor), so the
// request returns 202 immediately and the sensor ID shows up on the worker
// once the device reports it.
func (s *Server) enrollWorker(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	worker, err := s.uc.Worker.Get(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}

	async.Dispatch(r.Context(), func(ctx context.Context) error {
		if _, err := s.uc.Worker.Enroll(ctx, id); err != nil {
			return goerr.Wrap(err, "enrollment failed", goerr.V("worker", id))
		}
		return nil
	})

	respondJSON(r, w, http.StatusAccepted, worker)
}

// --- attendance ---

func (s *Server) attendanceHistory(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRangeQuery(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var late *bool
	if raw := r.URL.Query().Get("late"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid late parameter"), http.StatusBadRequest)
			return
		}
		late = &parsed
	}

	records, err := s.uc.Attendance.History(r.Context(), from, to, late)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, records)
}

func (s *Server) workerAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	from, to, err := timeRangeQuery(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	records, err := s.uc.Attendance.WorkerHistory(r.Context(), id, from, to)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, records)
}

func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	record, err := s.uc.Attendance.ActiveSession(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}
	if record == nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(model.ErrNoActiveSession, "no open session"), http.StatusNotFound)
		return
	}
	respondJSON(r, w, http.StatusOK, record)
}

func (s *Server) lateCount(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	from, to, err := timeRangeQuery(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	count, err := s.uc.Attendance.LateCount(r.Context(), id, from, to)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, map[string]int{"late_count": count})
}

// --- audit ---

func (s *Server) accessLogs(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRangeQuery(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	entries, err := s.uc.Audit.AccessHistory(r.Context(), from, to)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, entries)
}

func (s *Server) workerAccessLogs(w http.ResponseWriter, r *http.Request) {
	id, err := workerIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	entries, err := s.uc.Audit.WorkerAccessHistory(r.Context(), id)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, entries)
}

func (s *Server) deniedAccessLogs(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid since parameter"), http.StatusBadRequest)
			return
		}
		since = parsed
	}

	entries, err := s.uc.Audit.DeniedSince(r.Context(), since)
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, entries)
}

func (s *Server) securityEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRangeQuery(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	events, err := s.uc.Audit.SecurityEvents(r.Context(), from, to, r.URL.Query().Get("severity"))
	if err != nil {
		respondError(r, w, err)
		return
	}
	respondJSON(r, w, http.StatusOK, events)
}

// --- config ---

type shiftConfigRequest struct {
	WorkStart        string     `json:"work_start"`
	WorkEnd          string     `json:"work_end"`
	ToleranceMinutes int        `json:"tolerance_minutes"`
	EntryLeadMinutes int        `json:"entry_lead_minutes"`
	SimulationMode   bool       `json:"simulation_mode"`
	SimulatedNow     *time.Time `json:"simulated_now,omitempty"`
}

func (s *Server) getShiftConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(r, w, http.StatusOK, s.uc.Config.Get(r.Context()))
}

func (s *Server) updateShiftConfig(w http.ResponseWriter, r *http.Request) {
	var req shiftConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	workStart, err := model.ParseClockTime(req.WorkStart)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	workEnd, err := model.ParseClockTime(req.WorkEnd)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	cfg, err := s.uc.Config.Update(r.Context(), &model.ShiftConfig{
		WorkStart:        workStart,
		WorkEnd:          workEnd,
		ToleranceMinutes: req.ToleranceMinutes,
		EntryLeadMinutes: req.EntryLeadMinutes,
		SimulationMode:   req.SimulationMode,
		SimulatedNow:     req.SimulatedNow,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	respondJSON(r, w, http.StatusOK, cfg)
}
