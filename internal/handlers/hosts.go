package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftops/panel/internal/secrets"
	"github.com/craftops/panel/internal/store"
)

// requireStore replies 503 when persistence is disabled. The core
// session/exec surface works without a database; only saved hosts,
// schedules, and the audit trail depend on it.
func requireStore(w http.ResponseWriter) bool {
	if store.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is disabled")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// ListHosts returns all saved hosts. Credentials never leave the store.
func (a *API) ListHosts(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	var hosts []store.SavedHost
	if err := store.DB.Order("name").Find(&hosts).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hosts == nil {
		hosts = []store.SavedHost{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hosts": hosts})
}

type createHostRequest struct {
	Name       string `json:"name"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	PrivateKey string `json:"privateKey"`
}

// CreateHost saves a host with its credential encrypted at rest.
func (a *API) CreateHost(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	var req createHostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Host == "" || req.User == "" {
		writeError(w, http.StatusBadRequest, "name, host and user are required")
		return
	}
	if err := validateRemoteUser(req.User); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (req.Password == "") == (req.PrivateKey == "") {
		writeError(w, http.StatusBadRequest, "exactly one of password or privateKey is required")
		return
	}
	if req.Port == 0 {
		req.Port = 22
	}

	kind, secret := "password", req.Password
	if req.PrivateKey != "" {
		kind, secret = "key", req.PrivateKey
	}
	enc, err := secrets.Encrypt(secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encrypt credential: "+err.Error())
		return
	}

	host := store.SavedHost{
		Name:           req.Name,
		Host:           req.Host,
		Port:           req.Port,
		User:           req.User,
		EncCredential:  enc,
		CredentialKind: kind,
	}
	if err := store.DB.Create(&host).Error; err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, host)
}

// DeleteHost removes a saved host and its schedules.
func (a *API) DeleteHost(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var schedules []store.BackupSchedule
	store.DB.Where("host_id = ?", id).Find(&schedules)
	for _, s := range schedules {
		if a.Scheduler != nil {
			a.Scheduler.Remove(s.ID)
		}
	}
	store.DB.Where("host_id = ?", id).Delete(&store.BackupSchedule{})

	if err := store.DB.Delete(&store.SavedHost{}, id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListSchedules returns every backup schedule.
func (a *API) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	var schedules []store.BackupSchedule
	if err := store.DB.Order("id").Find(&schedules).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if schedules == nil {
		schedules = []store.BackupSchedule{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

type createScheduleRequest struct {
	HostID   uint   `json:"hostId"`
	CronExpr string `json:"cronExpr"`
}

// CreateSchedule stores a backup schedule and registers it with the running
// scheduler, so it fires without a restart.
func (a *API) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	var req createScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CronExpr == "" {
		writeError(w, http.StatusBadRequest, "cronExpr is required")
		return
	}

	var host store.SavedHost
	if err := store.DB.First(&host, req.HostID).Error; err != nil {
		writeError(w, http.StatusNotFound, "host not found")
		return
	}

	sched := store.BackupSchedule{
		HostID:   req.HostID,
		CronExpr: req.CronExpr,
		Enabled:  true,
	}
	if err := store.DB.Create(&sched).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Add(sched); err != nil {
			store.DB.Delete(&store.BackupSchedule{}, sched.ID)
			writeError(w, http.StatusBadRequest, "invalid cron expression: "+err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, sched)
}

// DeleteSchedule removes a schedule from the store and the running cron.
func (a *API) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if a.Scheduler != nil {
		a.Scheduler.Remove(id)
	}
	if err := store.DB.Delete(&store.BackupSchedule{}, id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListAudit returns the most recent audit entries, newest first.
func (a *API) ListAudit(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w) {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	var entries []store.AuditEntry
	if err := store.DB.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audit": entries})
}
