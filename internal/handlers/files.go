package handlers

import (
	"net/http"
	"path"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
	"github.com/craftops/panel/internal/sshfiles"
)

type listFilesRequest struct {
	SessionID string `json:"sessionId"`
	Dir       string `json:"dir"`
}

// ListFiles returns one level of the server directory tree. The requested
// path is resolved and confined before it reaches the remote shell.
func (a *API) ListFiles(w http.ResponseWriter, r *http.Request) {
	var req listFilesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	dir, err := minecraft.ServerPath(sess.RemoteUser, req.Dir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.ListFilesCommand(dir))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if res.ExitCode != 0 {
		writeError(w, http.StatusBadGateway, "list failed: "+res.Stderr)
		return
	}
	entries := minecraft.ParseFileList(res.Stdout)
	if entries == nil {
		entries = []minecraft.FileEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// DownloadFile streams one file from the server directory as an attachment.
func (a *API) DownloadFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	file := r.URL.Query().Get("file")
	if file == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	target, err := minecraft.ServerPath(sess.RemoteUser, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+path.Base(target))
	if _, err := sshfiles.Stream(sess.Client(), target, w); err != nil {
		// Headers are gone; best effort is to stop the stream.
		return
	}
}
