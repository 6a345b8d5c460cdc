// Package handlers maps the HTTP surface onto the session registry and the
// SSH-facing packages. Response shapes are JSON except where an endpoint
// streams (chunked text for long operations, SSE for log tails, SFTP-backed
// attachments for downloads).
package handlers

import (
	"log"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/craftops/panel/internal/sched"
	"github.com/craftops/panel/internal/session"
	"github.com/craftops/panel/internal/store"
	"github.com/craftops/panel/internal/versions"
)

// API carries the dependencies the handlers need. Constructed once in main;
// no package-level mutable state.
type API struct {
	Registry  *session.Registry
	Versions  *versions.Client
	Scheduler *sched.Scheduler // nil when the scheduler is disabled
}

// New builds an API façade around the given registry.
func New(registry *session.Registry, opts ...func(*API)) *API {
	a := &API{
		Registry: registry,
		Versions: versions.NewClient(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithScheduler attaches the backup scheduler so schedule mutations take
// effect without a restart.
func WithScheduler(s *sched.Scheduler) func(*API) {
	return func(a *API) { a.Scheduler = s }
}

// Routes mounts every endpoint under the given router.
func (a *API) Routes(r chi.Router) {
	r.Post("/connect", a.Connect)
	r.Post("/disconnect", a.Disconnect)

	r.Post("/control", a.Control)
	r.Get("/status", a.Status)
	r.Post("/send-command", a.SendCommand)
	r.Post("/player/ban", a.BanPlayer)
	r.Post("/host/reboot", a.RebootHost)

	r.Get("/resources", a.Resources)

	r.Get("/logs/tail", a.TailLogs)
	r.Get("/logs/latest", a.LatestLog)
	r.Get("/logs/install/download", a.DownloadInstallLog)
	r.Post("/logs/clear", a.ClearConsole)
	r.Get("/logs/panel", a.PanelLog)
	r.Get("/console", a.ConsoleWS)

	r.Post("/install", a.Install)
	r.Post("/uninstall", a.Uninstall)
	r.Post("/firewall", a.Firewall)
	r.Get("/export", a.ExportServer)

	r.Post("/backups", a.Backups)

	r.Post("/files/list", a.ListFiles)
	r.Get("/files/download", a.DownloadFile)

	r.Get("/properties", a.GetProperties)
	r.Post("/properties", a.SaveProperties)

	r.Get("/players", a.GetPlayers)
	r.Post("/player", a.ManagePlayer)

	r.Get("/versions", a.ListVersions)

	r.Get("/hosts", a.ListHosts)
	r.Post("/hosts", a.CreateHost)
	r.Delete("/hosts/{id}", a.DeleteHost)
	r.Get("/schedules", a.ListSchedules)
	r.Post("/schedules", a.CreateSchedule)
	r.Delete("/schedules/{id}", a.DeleteSchedule)
	r.Get("/audit", a.ListAudit)
}

// audit records an operation outcome when the store is initialized. Handler
// paths never fail because bookkeeping did.
func (a *API) audit(sess *session.Session, operation, detail string, exitCode int, success bool, started time.Time) {
	if store.DB == nil {
		return
	}
	entry := store.AuditEntry{
		Operation: operation,
		Detail:    detail,
		ExitCode:  exitCode,
		Success:   success,
		Duration:  time.Since(started).Milliseconds(),
	}
	if sess != nil {
		entry.Host = sess.RemoteHost
		entry.User = sess.RemoteUser
	}
	if err := store.Audit(entry); err != nil {
		log.Printf("audit write failed: %v", err)
	}
}
