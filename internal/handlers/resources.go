package handlers

import (
	"net/http"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshexec"
)

// Resources probes host CPU, RAM, and disk usage in one round trip.
func (a *API) Resources(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}
	res, err := sshexec.Run(r.Context(), sess.Client(), minecraft.ResourcesCommand())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, minecraft.ParseResources(res.Stdout))
}
