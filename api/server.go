package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/service"
	"github.com/wricardo/mcp-training/parkingnav/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.NavigationService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *logging.Logger
	started time.Time
}

// NewServer creates a new API server. A nil hub disables /ws.
func NewServer(svc service.NavigationService, hub *websocket.Hub, logger *logging.Logger) *Server {
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Navigation
	api.HandleFunc("/sessions/{id}/snapshot", s.handleGetSnapshot).Methods("GET")
	api.HandleFunc("/sessions/{id}/floor", s.handleSelectFloor).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", s.handleSelectSpot).Methods("POST")
	api.HandleFunc("/sessions/{id}/confirm", s.handleConfirm).Methods("POST")
	api.HandleFunc("/sessions/{id}/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/sessions/{id}/dismiss", s.handleDismiss).Methods("POST")
	api.HandleFunc("/sessions/{id}/find-car", s.handleFindCar).Methods("POST")
	api.HandleFunc("/sessions/{id}/find-free", s.handleFindFree).Methods("POST")

	// Facilities
	api.HandleFunc("/facilities", s.handleListFacilities).Methods("GET")
	api.HandleFunc("/facilities/{name}", s.handleGetFacility).Methods("GET")
	api.HandleFunc("/facilities/{name}/refresh", s.handleRefreshFacility).Methods("POST")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrFacilityNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case service.ErrorCode(err) != "internal":
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// commandStatus picks the HTTP status for a command result. Failed
// commands still return the result body so clients see the snapshot.
func commandStatus(result *service.CommandResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Code {
	case "invalid_transition":
		return http.StatusConflict
	case "no_route", "no_stairs", "no_free_spot", "no_car":
		return http.StatusUnprocessableEntity
	case "invalid_spot", "out_of_bounds", "floor_not_found":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondCommand(w http.ResponseWriter, result *service.CommandResult, err error) {
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, commandStatus(result), result)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FacilityID string             `json:"facility_id,omitempty"`
		Start      *facility.Location `json:"start,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := s.service.CreateSession(r.Context(), req.FacilityID, req.Start)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	total := len(sessions)

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if name := query.Get("facility"); name != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.Facility == name {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Navigation Handlers

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSelectFloor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Floor *facility.Level `json:"floor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Floor == nil {
		respondError(w, http.StatusBadRequest, "floor is required, e.g. {\"floor\": \"B1\"}")
		return
	}

	result, err := s.service.SelectFloor(r.Context(), mux.Vars(r)["id"], *req.Floor)
	s.respondCommand(w, result, err)
}

func (s *Server) handleSelectSpot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Floor  *facility.Level `json:"floor"`
		SpotID string          `json:"spot_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Floor == nil || req.SpotID == "" {
		respondError(w, http.StatusBadRequest, "floor and spot_id are required, e.g. {\"floor\": \"1\", \"spot_id\": \"A1\"}")
		return
	}

	result, err := s.service.SelectSpot(r.Context(), mux.Vars(r)["id"], *req.Floor, req.SpotID)
	s.respondCommand(w, result, err)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ConfirmRoute(r.Context(), mux.Vars(r)["id"])
	s.respondCommand(w, result, err)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.CancelRoute(r.Context(), mux.Vars(r)["id"])
	s.respondCommand(w, result, err)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.DismissArrival(r.Context(), mux.Vars(r)["id"])
	s.respondCommand(w, result, err)
}

func (s *Server) handleFindCar(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.FindMyCar(r.Context(), mux.Vars(r)["id"])
	s.respondCommand(w, result, err)
}

func (s *Server) handleFindFree(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.FindFreeSpot(r.Context(), mux.Vars(r)["id"])
	s.respondCommand(w, result, err)
}

// Facility Handlers

func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := s.service.ListFacilities(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(facilities),
		"facilities": facilities,
	})
}

func (s *Server) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	f, err := s.service.GetFacility(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleRefreshFacility(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.RefreshFacility(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket streaming disabled", http.StatusNotFound)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	snap, err := s.service.GetSnapshot(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, websocket.SnapshotMessage(sessionID, *snap))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, _ := s.service.ListSessions(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"sessions":    len(sessions),
		"route_cache": s.service.CacheStats(),
	})
}
