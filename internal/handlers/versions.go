package handlers

import "net/http"

// ListVersions returns the installable versions for a server type, newest
// first, fetched from the upstream version catalogs.
func (a *API) ListVersions(w http.ResponseWriter, r *http.Request) {
	serverType := r.URL.Query().Get("type")
	if serverType == "" {
		serverType = "vanilla"
	}
	versions, err := a.Versions.List(r.Context(), serverType)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch versions: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}
