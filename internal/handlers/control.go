package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/craftops/panel/internal/command"
	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
)

type controlRequest struct {
	SessionID string                  `json:"sessionId"`
	Action    minecraft.ControlAction `json:"action"`
}

// Control runs one of the fixed lifecycle actions against the managed
// service and returns the remote output. A non-zero exit from systemctl
// status is data (service stopped), not a failure.
func (a *API) Control(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	cmd, ok := minecraft.ControlCommand(req.Action, sess.RemoteUser)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action")
		return
	}

	start := time.Now()
	res, err := sshexec.Run(r.Context(), sess.Client(), cmd)
	a.audit(sess, "control", string(req.Action), res.ExitCode, err == nil, start)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	output := res.Stdout
	if output == "" {
		output = res.Stderr
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"output":   output,
		"exitCode": res.ExitCode,
	})
}

// Status reports service liveness as a boolean. The probe prints a token
// instead of relying on exit codes, so "not running" never surfaces as an
// error here.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.StatusProbe())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"isActive": minecraft.ParseStatusProbe(res.Stdout),
	})
}

type sendCommandRequest struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

// SendCommand injects one line into the running server console.
// Fire-and-forget: success means the line was delivered to the remote
// input, not that the server accepted it.
func (a *API) SendCommand(w http.ResponseWriter, r *http.Request) {
	var req sendCommandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command must not be empty")
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	cmd, err := minecraft.ConsoleCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := sshexec.Run(r.Context(), sess.Client(), cmd); err != nil {
		writeError(w, http.StatusBadGateway, "failed to deliver command; is the server running? "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type banRequest struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

// BanPlayer bans a player through the allow-listed ban helper. The player
// name is validated against the strict argument charset before any remote
// text is built.
func (a *API) BanPlayer(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	cmd, err := command.Build(command.BanPlayer, req.PlayerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := sshexec.Run(r.Context(), sess.Client(), cmd)
	a.audit(sess, "ban-player", req.PlayerName, res.ExitCode, err == nil && res.ExitCode == 0, start)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if res.ExitCode != 0 {
		writeError(w, http.StatusBadGateway, "ban failed: "+res.Stderr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Player " + req.PlayerName + " banned."})
}

type rebootRequest struct {
	SessionID string `json:"sessionId"`
}

// RebootHost reboots the managed host via the allow-listed reboot command.
// The transport will drop as the host goes down; the session's reactive
// teardown removes it from the registry.
func (a *API) RebootHost(w http.ResponseWriter, r *http.Request) {
	var req rebootRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	cmd, err := command.Build(command.RebootHost)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := sshexec.Run(r.Context(), sess.Client(), cmd)
	a.audit(sess, "reboot-host", "", res.ExitCode, err == nil, start)
	if err != nil {
		// A dropped connection here usually means the reboot took effect
		// before the command could report back.
		log.Printf("reboot for %s: %v", sess.RemoteHost, err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Host is rebooting."})
}
