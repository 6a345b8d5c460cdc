package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/craftops/panel/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeSessionError maps registry lookup failures onto status codes:
// a missing session is 404 so clients can distinguish "reconnect" from
// transport trouble (502).
func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// sessionFromQuery resolves the session named by the sessionId query
// parameter, replying with the appropriate error when absent or dead.
func (a *API) sessionFromQuery(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return nil, false
	}
	sess, err := a.Registry.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

// decodeBody parses a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// sessionFromID resolves a session id taken from a request body.
func (a *API) sessionFromID(w http.ResponseWriter, id string) (*session.Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return nil, false
	}
	sess, err := a.Registry.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}
