// Package sched runs unattended backups for saved hosts on cron schedules.
// Each run opens a short-lived session through the same registry the HTTP
// layer uses, executes the backup pipeline with a discarded live stream, and
// records the outcome in the audit log and on the schedule row.
package sched

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/craftops/panel/internal/minecraft"
	"github.com/craftops/panel/internal/secrets"
	"github.com/craftops/panel/internal/session"
	"github.com/craftops/panel/internal/store"
	"github.com/craftops/panel/internal/streamop"
)

// Scheduler owns the cron runner and the mapping from schedule rows to cron
// entries.
type Scheduler struct {
	registry *session.Registry
	cron     *cron.Cron

	mu      sync.Mutex
	entries map[uint]cron.EntryID
}

// New creates a stopped Scheduler bound to the session registry.
func New(registry *session.Registry) *Scheduler {
	return &Scheduler{
		registry: registry,
		cron:     cron.New(),
		entries:  make(map[uint]cron.EntryID),
	}
}

// Start loads enabled schedules from the store and begins running them.
func (s *Scheduler) Start() error {
	var schedules []store.BackupSchedule
	if err := store.DB.Where("enabled = ?", true).Find(&schedules).Error; err != nil {
		return err
	}
	for _, sched := range schedules {
		if err := s.Add(sched); err != nil {
			log.Printf("Scheduler: skipping schedule %d: %v", sched.ID, err)
		}
	}
	s.cron.Start()
	log.Printf("Backup scheduler started (%d schedules)", len(s.entries))
	return nil
}

// Stop halts the cron runner, waiting for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Add registers one schedule with the cron runner. The expression is
// validated here so bad rows surface at registration, not at first fire.
func (s *Scheduler) Add(sched store.BackupSchedule) error {
	id := sched.ID
	entryID, err := s.cron.AddFunc(sched.CronExpr, func() { s.runBackup(id) })
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[id] = entryID
	s.mu.Unlock()
	return nil
}

// Remove unregisters a schedule.
func (s *Scheduler) Remove(scheduleID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[scheduleID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, scheduleID)
	}
}

func (s *Scheduler) runBackup(scheduleID uint) {
	var sched store.BackupSchedule
	if err := store.DB.Preload("Host").First(&sched, scheduleID).Error; err != nil {
		log.Printf("Scheduler: schedule %d vanished: %v", scheduleID, err)
		s.Remove(scheduleID)
		return
	}
	host := sched.Host

	start := time.Now()
	err := s.backupHost(host)

	sched.LastRunAt = start
	sched.LastError = ""
	if err != nil {
		sched.LastError = err.Error()
		log.Printf("Scheduler: backup for %s failed: %v", host.Host, err)
	} else {
		log.Printf("Scheduler: backup for %s finished in %s", host.Host, time.Since(start))
	}
	if dbErr := store.DB.Save(&sched).Error; dbErr != nil {
		log.Printf("Scheduler: persist schedule %d: %v", scheduleID, dbErr)
	}

	audit := store.AuditEntry{
		Host:      host.Host,
		User:      host.User,
		Operation: "scheduled-backup",
		Success:   err == nil,
		Duration:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		audit.Detail = err.Error()
	}
	if dbErr := store.Audit(audit); dbErr != nil {
		log.Printf("Scheduler: audit write: %v", dbErr)
	}
}

// backupHost connects, runs the backup pipeline to completion, and tears the
// session down again. Long scripts get a generous but bounded deadline.
func (s *Scheduler) backupHost(host store.SavedHost) error {
	cred, err := secrets.Decrypt(host.EncCredential)
	if err != nil {
		return err
	}
	credential := session.Credential{Password: cred}
	if host.CredentialKind == "key" {
		credential = session.Credential{PrivateKey: cred}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	sess, err := s.registry.Create(ctx, host.Host, host.Port, host.User, credential)
	if err != nil {
		return err
	}
	defer s.registry.Destroy(sess.ID)

	script, _ := minecraft.BackupCreateScript(host.User, time.Now())
	res, err := streamop.Run(ctx, sess.Client(), script, io.Discard, streamop.BackupDone)
	if err != nil {
		return err
	}
	if !res.Done {
		return &IncompleteError{Operation: "backup", ExitCode: res.ExitCode}
	}
	return nil
}

// IncompleteError reports a script that ran but never printed its completion
// sentinel.
type IncompleteError struct {
	Operation string
	ExitCode  int
}

func (e *IncompleteError) Error() string {
	return "scheduled " + e.Operation + " did not complete (no sentinel in output)"
}
