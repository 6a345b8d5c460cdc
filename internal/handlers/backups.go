package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
	"github.com/craftops/panel/internal/sshfiles"
	"github.com/craftops/panel/internal/streamop"
)

type backupsRequest struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
	File      string `json:"file"`
}

// Backups multiplexes the backup operations. list and delete reply with
// JSON; create and restore stream chunked text like Install does.
//
// delete and restore validate the file name before any remote command is
// built: a traversal attempt never reaches the shell.
func (a *API) Backups(w http.ResponseWriter, r *http.Request) {
	var req backupsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	switch req.Action {
	case "list":
		res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.BackupListCommand(sess.RemoteUser))
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		backups := minecraft.ParseBackupList(res.Stdout)
		if backups == nil {
			backups = []minecraft.Backup{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"backups": backups})

	case "delete":
		if err := minecraft.ValidateBackupFileName(req.File); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		start := time.Now()
		res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.BackupDeleteCommand(sess.RemoteUser, req.File))
		a.audit(sess, "backup-delete", req.File, res.ExitCode, err == nil, start)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"message": fmt.Sprintf("Backup %q deleted.", req.File),
		})

	case "create":
		script, _ := minecraft.BackupCreateScript(sess.RemoteUser, time.Now())
		a.streamOperation(w, r, sess, "backup-create", script, streamop.BackupDone)

	case "restore":
		if err := minecraft.ValidateBackupFileName(req.File); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.streamOperation(w, r, sess, "backup-restore", minecraft.BackupRestoreScript(sess.RemoteUser, req.File), streamop.RestoreDone)

	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

// ExportServer archives the whole server directory remotely, streams the
// tarball to the client via SFTP, and removes the temporary archive.
func (a *API) ExportServer(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}

	client := sess.Client()
	archive := minecraft.ExportArchivePath(sess.RemoteUser)

	if _, err := sshexec.Run(r.Context(), client, minecraft.ExportArchiveCommand(sess.RemoteUser)); err != nil {
		writeError(w, http.StatusBadGateway, "failed to build archive: "+err.Error())
		return
	}
	// Best effort; the next export overwrites it anyway.
	defer sshfiles.Remove(client, archive)

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", "attachment; filename=server-backup.tar.gz")

	if _, err := sshfiles.Stream(client, archive, w); err != nil {
		// Headers are gone; best effort is to stop the stream.
		return
	}
}
