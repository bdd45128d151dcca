// Package service exposes the attendance store over HTTP with JSON bodies.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/dtlattendance/internal/attendance"
	"github.com/mmynk/dtlattendance/internal/datekey"
	"github.com/mmynk/dtlattendance/internal/models"
)

// maxBodyBytes caps request bodies; every request here is a few fields.
const maxBodyBytes = 64 << 10

// CreateChildRequest is the body of POST /api/children.
type CreateChildRequest struct {
	Name  string `json:"name"`
	TagID string `json:"nfcId,omitempty"`
}

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	TagID string `json:"nfcId"`
}

// ChildrenResponse lists the roster.
type ChildrenResponse struct {
	Children []models.Child `json:"children"`
}

// RemoveChildResponse reports whether a roster entry was removed.
type RemoveChildResponse struct {
	Removed bool `json:"removed"`
}

// ToggleResponse reports a child's presence after a toggle.
type ToggleResponse struct {
	ChildID string `json:"childId"`
	Date    string `json:"date"`
	Present bool   `json:"present"`
}

// PresenceResponse lists the children present on a date.
type PresenceResponse struct {
	Date     string   `json:"date"`
	ChildIDs []string `json:"childIds"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AttendanceService serves the attendance API.
type AttendanceService struct {
	store *attendance.Store
}

// NewAttendanceService creates a new AttendanceService backed by store.
func NewAttendanceService(store *attendance.Store) *AttendanceService {
	if store == nil {
		panic("service: NewAttendanceService requires a non-nil store")
	}
	return &AttendanceService{store: store}
}

// Register adds the API routes to mux.
func (s *AttendanceService) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("GET /api/children", s.ListChildren)
	mux.HandleFunc("POST /api/children", s.CreateChild)
	mux.HandleFunc("DELETE /api/children/{id}", s.RemoveChild)
	mux.HandleFunc("POST /api/children/{id}/toggle", s.TogglePresent)
	mux.HandleFunc("POST /api/scan", s.Scan)
	mux.HandleFunc("GET /api/attendance/{date}", s.PresentForDate)
	mux.HandleFunc("GET /api/dashboard", s.Dashboard)
}

// Health reports whether persisted state has been loaded.
func (s *AttendanceService) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": s.store.Loaded(),
	})
}

// ListChildren returns the roster in insertion order.
func (s *AttendanceService) ListChildren(w http.ResponseWriter, r *http.Request) {
	children := s.store.Children()
	slog.Debug("ListChildren successful", "count", len(children))
	writeJSON(w, http.StatusOK, ChildrenResponse{Children: children})
}

// CreateChild adds a child. The name is required; an omitted tag is generated.
func (s *AttendanceService) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req CreateChildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if err := attendance.ValidateName(name); err != nil {
		slog.Warn("CreateChild rejected", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	child := s.store.AddChild(name, strings.TrimSpace(req.TagID))
	slog.Info("Child created", "child_id", child.ID)
	writeJSON(w, http.StatusCreated, child)
}

// RemoveChild deletes a child and its attendance history. Unknown ids
// succeed with removed=false.
func (s *AttendanceService) RemoveChild(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	removed := s.store.RemoveChild(childID)
	slog.Info("RemoveChild", "child_id", childID, "removed", removed)
	writeJSON(w, http.StatusOK, RemoveChildResponse{Removed: removed})
}

// TogglePresent flips a child's presence for today.
func (s *AttendanceService) TogglePresent(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	present := s.store.TogglePresentToday(childID)
	writeJSON(w, http.StatusOK, ToggleResponse{
		ChildID: childID,
		Date:    s.store.Today(),
		Present: present,
	})
}

// Scan marks the child holding a tag present today. A tag with no match
// returns 200 with a null child.
func (s *AttendanceService) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tag := strings.TrimSpace(req.TagID)
	if tag == "" {
		writeError(w, http.StatusBadRequest, errors.New("nfcId is required"))
		return
	}

	result := s.store.MarkPresentByTag(tag)
	if result.Child == nil {
		slog.Info("Scan matched no child", "tag", tag)
	}
	writeJSON(w, http.StatusOK, result)
}

// PresentForDate lists the ids present on a date key or "today".
func (s *AttendanceService) PresentForDate(w http.ResponseWriter, r *http.Request) {
	date, err := s.resolveDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, PresenceResponse{
		Date:     date,
		ChildIDs: s.store.PresentIDsForDate(date),
	})
}

// Dashboard summarizes today, or the date in the ?date= query parameter.
func (s *AttendanceService) Dashboard(w http.ResponseWriter, r *http.Request) {
	date, err := s.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Dashboard(date))
}

func (s *AttendanceService) resolveDate(raw string) (string, error) {
	if raw == "" || raw == "today" {
		return s.store.Today(), nil
	}
	if err := datekey.Validate(raw); err != nil {
		return "", err
	}
	return raw, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
