package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/session"
	"github.com/craftops/panel/internal/streamop"
)

type installRequest struct {
	SessionID  string            `json:"sessionId"`
	Type       string            `json:"type"`
	Version    string            `json:"version"`
	Properties map[string]string `json:"properties"`
	MinRAM     string            `json:"minRam"`
	MaxRAM     string            `json:"maxRam"`
}

// Install runs the full installer pipeline, streaming raw remote output to
// the client as chunked plain text. The stream ends with the
// __INSTALL_DONE__ sentinel line on success; its absence means failure and
// the retained install log holds the transcript.
func (a *API) Install(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	script, err := minecraft.InstallScript(sess.RemoteUser, minecraft.InstallOptions{
		Type:       minecraft.ServerType(req.Type),
		Version:    req.Version,
		Properties: req.Properties,
		MinRAM:     req.MinRAM,
		MaxRAM:     req.MaxRAM,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.streamOperation(w, r, sess, "install", script, streamop.InstallDone)
}

type uninstallRequest struct {
	SessionID string `json:"sessionId"`
}

// Uninstall deep-cleans the server installation, streaming output the same
// way Install does.
func (a *API) Uninstall(w http.ResponseWriter, r *http.Request) {
	var req uninstallRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	a.streamOperation(w, r, sess, "uninstall", minecraft.UninstallScript(sess.RemoteUser), streamop.UninstallDone)
}

type firewallRequest struct {
	SessionID string `json:"sessionId"`
}

// Firewall opens the SSH and game ports in the host's UFW, streaming the
// rule output back.
func (a *API) Firewall(w http.ResponseWriter, r *http.Request) {
	var req firewallRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	res, err := streamop.Stream(r.Context(), sess.Client(), minecraft.FirewallScript(), &flushWriter{w: w})
	a.audit(sess, "firewall", "", res.ExitCode, err == nil && res.ExitCode == 0, start)
	if err != nil {
		log.Printf("firewall script for %s: %v", sess.RemoteHost, err)
	}
}

// streamOperation executes a long remote script with live chunked output.
// The client disconnecting stops the relay but not the remote script: the
// context handed to the operation is detached from the request so installs
// survive a closed browser tab, matching the retained-transcript contract.
func (a *API) streamOperation(w http.ResponseWriter, r *http.Request, sess *session.Session, name, script string, marker streamop.Marker) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Detached from the request context: the remote script runs to
	// completion even if the subscriber goes away mid-stream. Writes to a
	// dead client are dropped by the sink; the transcript stays complete.
	opCtx := context.WithoutCancel(r.Context())

	start := time.Now()
	res, err := streamop.Run(opCtx, sess.Client(), script, &flushWriter{w: w}, marker)
	a.audit(sess, name, "", res.ExitCode, err == nil && res.Done, start)

	if err != nil {
		// Transport died mid-operation. The remote script keeps running;
		// the transcript stays retrievable from the install log.
		log.Printf("%s operation for %s: %v", name, sess.RemoteHost, err)
		return
	}
	if !res.Done {
		log.Printf("%s operation for %s finished without sentinel (exit %d)", name, sess.RemoteHost, res.ExitCode)
	}
}

// flushWriter flushes after every chunk so progress reaches the client as
// it is produced, not at buffer boundaries.
type flushWriter struct {
	w http.ResponseWriter
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if flusher, ok := f.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return n, err
}
