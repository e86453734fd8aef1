package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"shiftserver/callcodes"
	log "shiftserver/cloudlog"
	"shiftserver/teamadmin"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// server is the HTTP glue around the callable handlers: it resolves the caller
// from the Authorization header, decodes the JSON input, and maps handler
// failures to HTTP statuses.
type server struct {
	admin    *teamadmin.Handler
	verifier tokenVerifier
}

type deleteTeamRequest struct {
	TeamID string `json:"teamId"`
}

type deleteStaffRequest struct {
	UserID string `json:"userId"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// callerID gives the verified account ID from the request's bearer token, or
// empty when the request carries no verifiable identity. The handlers turn an
// empty caller into their Unauthenticated failure.
func (s *server) callerID(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	uid, err := s.verifier.VerifyIDToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		log.Printf("ID token verification failed: %v", err)
		return ""
	}
	return uid
}

func (s *server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	// An undecodable body leaves the input empty and flows through the
	// handler's own precondition order, so authentication is still checked
	// first.
	input := deleteTeamRequest{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("undecodable request body: %v", err)
	}
	result, err := s.admin.DeleteTeam(r.Context(), s.callerID(r), input.TeamID)
	if err != nil {
		writeError(w, callcodes.AsError(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleDeleteStaffAccount(w http.ResponseWriter, r *http.Request) {
	input := deleteStaffRequest{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("undecodable request body: %v", err)
	}
	result, err := s.admin.DeleteStaffAccount(r.Context(), s.callerID(r), input.UserID)
	if err != nil {
		writeError(w, callcodes.AsError(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, ce *callcodes.Error) {
	writeJSON(w, callcodes.HTTPStatus(ce.Code), errorResponse{
		Success: false,
		Code:    ce.Code,
		Message: ce.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("error writing response: %v", err)
	}
}
