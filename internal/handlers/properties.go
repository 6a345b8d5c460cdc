package handlers

import (
	"net/http"
	"time"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/sshfiles"
)

// GetProperties reads server.properties and returns it as a flat map with
// browser-safe dashed keys.
func (a *API) GetProperties(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.sessionFromQuery(w, r)
	if !ok {
		return
	}
	data, err := sshfiles.ReadFile(sess.Client(), minecraft.PropertiesPath(sess.RemoteUser))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to read server.properties: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"properties": minecraft.ParseProperties(string(data)),
	})
}

type savePropertiesRequest struct {
	SessionID  string            `json:"sessionId"`
	Properties map[string]string `json:"properties"`
}

// SaveProperties validates and writes a complete server.properties. The new
// values apply on the next server restart; the handler does not restart on
// its own.
func (a *API) SaveProperties(w http.ResponseWriter, r *http.Request) {
	var req savePropertiesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Properties) == 0 {
		writeError(w, http.StatusBadRequest, "properties are required")
		return
	}
	sess, ok := a.sessionFromID(w, req.SessionID)
	if !ok {
		return
	}

	body, err := minecraft.EncodeProperties(req.Properties)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	err = sshfiles.WriteFile(sess.Client(), minecraft.PropertiesPath(sess.RemoteUser), body)
	a.audit(sess, "save-properties", "", 0, err == nil, start)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to write server.properties: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "Properties saved. Restart the server to apply them.",
	})
}
