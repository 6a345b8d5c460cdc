package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/craftops/panel/internal/command"
	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
)

// GetPlayers returns the operator and whitelist rosters straight from the
// server's JSON files.
func (a *API) GetPlayers(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}
	res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.PlayersCommand(sess.RemoteUser))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	ops, whitelist, err := minecraft.ParsePlayers(res.Stdout)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if ops == nil {
		ops = []minecraft.Player{}
	}
	if whitelist == nil {
		whitelist = []minecraft.Player{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ops":       ops,
		"whitelist": whitelist,
	})
}

type managePlayerRequest struct {
	SessionID string `json:"sessionId"`
	List      string `json:"list"`
	Action    string `json:"action"`
	Username  string `json:"username"`
}

// ManagePlayer adds or removes a player on the operator or whitelist roster
// by injecting the matching console command. Whitelist edits are followed by
// a whitelist reload so the running server picks them up.
func (a *API) ManagePlayer(w http.ResponseWriter, r *http.Request) {
	var req managePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := command.ValidateArg(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, "invalid username: "+err.Error())
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	line, err := minecraft.PlayerCommand(minecraft.PlayerList(req.List), minecraft.PlayerAction(req.Action), req.Username)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	send, err := minecraft.ConsoleCommand(line)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := sshexec.Run(r.Context(), sess.Client(), send)
	a.audit(sess, "manage-player", req.List+"/"+req.Action+" "+req.Username, res.ExitCode, err == nil, start)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if minecraft.PlayerList(req.List) == minecraft.ListWhitelist {
		// Roster file is already updated; a failed reload just means the
		// change applies on the next restart.
		if reload, err := minecraft.ConsoleCommand(minecraft.WhitelistReloadCommand()); err == nil {
			if _, err := sshexec.Run(r.Context(), sess.Client(), reload); err != nil {
				log.Printf("whitelist reload for %s: %v", sess.RemoteHost, err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
