package minecraft

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docker/go-units"
)

// Backup is one entry in the remote backup directory listing.
type Backup struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
}

// BackupListCommand lists the backup directory as pipe-separated
// name|date|time|size records, creating the directory on first use.
func BackupListCommand(user string) string {
	dir := BackupDir(user)
	return fmt.Sprintf(`mkdir -p %[1]s; ls -lh --time-style="+%%Y-%%m-%%d %%H:%%M:%%S" %[1]s | awk 'NR>1 {print $9"|" $6"|" $7"|" $5}'`, dir)
}

// ParseBackupList parses BackupListCommand output. Malformed lines are
// skipped. Sizes come from ls -lh (e.g. "5M", "1.2G"); SizeBytes is the
// decoded byte count, 0 when the size cannot be parsed.
func ParseBackupList(output string) []Backup {
	var backups []Backup
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 || parts[0] == "" {
			continue
		}
		b := Backup{Name: parts[0], Date: parts[1], Time: parts[2], Size: parts[3]}
		if n, err := units.FromHumanSize(b.Size); err == nil {
			b.SizeBytes = n
		}
		backups = append(backups, b)
	}
	return backups
}

// backupNamePattern is the shape of names the panel itself generates. It
// admits no path separators or shell metacharacters, so a validated name can
// be interpolated into a remote command.
var backupNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateBackupFileName rejects names that could escape the backup
// directory. Called before any remote command is built.
func ValidateBackupFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name required")
	}
	if strings.Contains(name, "..") || !backupNamePattern.MatchString(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// BackupDeleteCommand removes one validated backup file.
func BackupDeleteCommand(user, fileName string) string {
	return fmt.Sprintf("rm -f %s/%s", BackupDir(user), fileName)
}
