package coursewatch

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"coursewatch-backend/lib/mailer"
	"coursewatch-backend/lib/scrapers/banner"
	"coursewatch-backend/lib/snapstore"
)

// RegisterHandlers mounts the control surface. The engine itself never
// calls these, they exist for the cli and for anything else that wants
// to drive monitors over plain http.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/monitors", s.handleStartMonitor)
	mux.HandleFunc("GET /api/monitors", s.handleListMonitors)
	mux.HandleFunc("DELETE /api/monitors/{id}", s.handleStopMonitor)
	mux.HandleFunc("GET /api/courses/{crn}", s.handleGetSnapshot)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/test-email", s.handleTestEmail)
}

type startMonitorBody struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	CRN         string            `json:"crn"`
	Credentials map[string]string `json:"credentials"`
}

func (s *Service) handleStartMonitor(w http.ResponseWriter, r *http.Request) {
	var body startMonitorBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.StartMonitor(r.Context(), StartMonitorRequest{
		Name:        body.Name,
		Email:       body.Email,
		CRN:         body.CRN,
		Credentials: banner.Credentials(body.Credentials),
	})
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Service) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ListMonitors(r.Context()))
}

func (s *Service) handleStopMonitor(w http.ResponseWriter, r *http.Request) {
	err := s.StopMonitor(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.GetLatestSnapshot(r.Context(), r.PathValue("crn"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.HealthCheck(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"emailCapabilityReady": health.EmailCapabilityReady,
		"activeMonitorCount":   health.ActiveMonitorCount,
		"uptimeSeconds":        int64(health.Uptime.Seconds()),
	})
}

type testEmailBody struct {
	To string `json:"to"`
}

// handleTestEmail verifies smtp delivery end to end without waiting for a
// seat to open.
func (s *Service) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	var body testEmailBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.To == "" {
		writeError(w, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	err = s.mailer.Send(r.Context(), mailer.TestEmail(body.To))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, snapstore.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
