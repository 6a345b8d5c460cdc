package store

import "time"

// SavedHost is a managed host the operator has stored for quick reconnects
// and scheduled backups. The credential is fernet-encrypted at rest and
// never serialized to API responses.
type SavedHost struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"uniqueIndex;not null;size:64" json:"name"`
	Host          string    `gorm:"not null" json:"host"`
	Port          int       `gorm:"not null;default:22" json:"port"`
	User          string    `gorm:"not null" json:"user"`
	EncCredential string    `json:"-"` // fernet-encrypted password or private key
	CredentialKind string   `gorm:"not null;default:password" json:"credentialKind"` // password | key
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BackupSchedule runs unattended backups for a saved host on a cron spec.
type BackupSchedule struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	HostID    uint      `gorm:"not null;index" json:"hostId"`
	CronExpr  string    `gorm:"not null" json:"cronExpr"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	LastRunAt time.Time `json:"lastRunAt"`
	LastError string    `json:"lastError"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Host SavedHost `gorm:"foreignKey:HostID" json:"-"`
}

// AuditEntry records one remote operation for later review. Commands are
// stored as their allow-list key or operation name, never as raw shell text
// with user input embedded.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Host      string    `gorm:"index" json:"host"`
	User      string    `json:"user"`
	Operation string    `gorm:"not null" json:"operation"`
	Detail    string    `json:"detail"`
	ExitCode  int       `json:"exitCode"`
	Success   bool      `json:"success"`
	Duration  int64     `json:"durationMs"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// Setting is a key/value row for process-owned state such as the fernet key.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
