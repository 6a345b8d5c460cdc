package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/craftops/panel/internal/session"
)

// Unix usernames: conservative POSIX portable set.
var remoteUserPattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

func validateRemoteUser(user string) error {
	if !remoteUserPattern.MatchString(user) {
		return fmt.Errorf("invalid remote user %q", user)
	}
	return nil
}

func credentialFrom(req connectRequest) session.Credential {
	return session.Credential{
		Password:   req.Password,
		PrivateKey: req.PrivateKey,
	}
}

type connectRequest struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	PrivateKey string `json:"privateKey"`
}

// Connect opens a new SSH session to the requested host and returns the
// opaque session id all later calls authenticate with.
func (a *API) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Host == "" || req.User == "" {
		writeError(w, http.StatusBadRequest, "host and user are required")
		return
	}
	if req.Password == "" && req.PrivateKey == "" {
		writeError(w, http.StatusBadRequest, "a password or private key is required")
		return
	}
	if req.Port == 0 {
		req.Port = 22
	}
	// The SSH user becomes part of remote paths; hold it to the same
	// charset as other remote arguments.
	if err := validateRemoteUser(req.User); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	sess, err := a.Registry.Create(r.Context(), req.Host, req.Port, req.User, credentialFrom(req))
	if err != nil {
		a.audit(nil, "connect", req.Host, -1, false, start)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	a.audit(sess, "connect", "", 0, true, start)

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sess.ID})
}

type disconnectRequest struct {
	SessionID string `json:"sessionId"`
}

// Disconnect tears down a session. Idempotent: unknown ids still return ok.
func (a *API) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req disconnectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a.Registry.Destroy(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
