package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/craftops/panel/internal/logging"
	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
	"github.com/craftops/panel/internal/sshfiles"
	"github.com/craftops/panel/internal/sshtail"
)

const ssePingInterval = 15 * time.Second

// TailLogs streams live log lines as server-sent events. source=console
// tails the screen console log (with its legacy fallback name); source=system
// interleaves the install log and the console log with a bracketed file tag
// on each line. A comment ping goes out every 15 seconds so proxies keep the
// connection open.
//
// The tail is tied to the request context: the client closing the
// EventSource tears down the remote tail process.
func (a *API) TailLogs(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	lines := 100
	if v := r.URL.Query().Get("lines"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 5000 {
			lines = n
		}
	}

	var (
		ch  <-chan string
		err error
	)
	switch r.URL.Query().Get("source") {
	case "", "console":
		ch, err = sshtail.Follow(r.Context(), sess.Client(), lines,
			minecraft.ScreenLogPath(sess.RemoteUser),
			minecraft.ScreenLogFallbackPath(sess.RemoteUser))
	case "system":
		ch, err = sshtail.FollowMulti(r.Context(), sess.Client(), lines,
			minecraft.InstallLogPath(sess.RemoteUser),
			minecraft.ScreenLogPath(sess.RemoteUser))
	default:
		writeError(w, http.StatusBadRequest, "unknown log source")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ping := time.NewTicker(ssePingInterval)
	defer ping.Stop()

	for {
		select {
		case line, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", line); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-ping.C:
			if _, err := fmt.Fprint(w, ":ping\n\n"); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// LatestLog returns the game server's current latest.log in one shot.
func (a *API) LatestLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}
	data, err := sshfiles.ReadFile(sess.Client(), minecraft.LatestLogPath(sess.RemoteUser))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to read latest.log: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": string(data)})
}

// DownloadInstallLog streams the retained install transcript as an
// attachment.
func (a *API) DownloadInstallLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=install.log")

	if _, err := sshfiles.Stream(sess.Client(), minecraft.InstallLogPath(sess.RemoteUser), w); err != nil {
		// Transfer may be partially written; nothing more to do.
		return
	}
}

// PanelLog returns the tail of the panel's own log file, for diagnosing the
// panel itself rather than a managed host. Requires no session.
func (a *API) PanelLog(w http.ResponseWriter, r *http.Request) {
	lines := 500
	if v := r.URL.Query().Get("lines"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 5000 {
			lines = n
		}
	}
	content, err := logging.ReadTail(lines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

type clearConsoleRequest struct {
	SessionID string `json:"sessionId"`
}

// ClearConsole truncates the console logs so the next tail starts fresh.
func (a *API) ClearConsole(w http.ResponseWriter, r *http.Request) {
	var req clearConsoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}
	if _, err := sshexec.Run(r.Context(), sess.Client(), minecraft.ClearConsoleCommand(sess.RemoteUser)); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
