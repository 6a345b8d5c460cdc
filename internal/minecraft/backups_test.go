package minecraft

import (
	"strings"
	"testing"
	"time"
)

func TestParseBackupList(t *testing.T) {
	output := "backup-2024-01-01.tar.gz|2024-01-01|10:00:00|5M\n" +
		"backup-2024-02-01.tar.gz|2024-02-01|11:30:00|1.2G\n"
	backups := ParseBackupList(output)
	if len(backups) != 2 {
		t.Fatalf("got %d backups, want 2", len(backups))
	}
	b := backups[0]
	if b.Name != "backup-2024-01-01.tar.gz" || b.Date != "2024-01-01" || b.Time != "10:00:00" || b.Size != "5M" {
		t.Errorf("first backup = %+v", b)
	}
	if b.SizeBytes != 5000000 {
		t.Errorf("SizeBytes = %d, want 5000000", b.SizeBytes)
	}
}

func TestParseBackupListSkipsMalformed(t *testing.T) {
	output := "good.tar.gz|2024-01-01|10:00:00|5M\n" +
		"total 12K\n" +
		"|2024-01-01|10:00:00|5M\n" +
		"missing-fields|5M\n" +
		"\n"
	backups := ParseBackupList(output)
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1: %+v", len(backups), backups)
	}
	if backups[0].Name != "good.tar.gz" {
		t.Errorf("kept %q", backups[0].Name)
	}
}

func TestParseBackupListEmpty(t *testing.T) {
	if got := ParseBackupList(""); len(got) != 0 {
		t.Errorf("empty listing produced %+v", got)
	}
}

func TestValidateBackupFileName(t *testing.T) {
	valid := []string{"backup-2024.tar.gz", "world_1.tar.gz", "a.tgz"}
	for _, name := range valid {
		if err := ValidateBackupFileName(name); err != nil {
			t.Errorf("ValidateBackupFileName(%q): %v", name, err)
		}
	}

	invalid := []string{
		"",
		"../etc/passwd",
		"a/../../b.tar.gz",
		"/etc/shadow",
		"dir\\file",
		"a b.tar.gz",
		"a;reboot",
		"a&b.tar.gz",
		"a$(reboot).tar.gz",
		"a'b.tar.gz",
	}
	for _, name := range invalid {
		if err := ValidateBackupFileName(name); err == nil {
			t.Errorf("ValidateBackupFileName(%q) accepted", name)
		}
	}
}

func TestBackupCreateScriptNamesFileFromTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	script, fileName := BackupCreateScript("mc", now)
	if !strings.Contains(fileName, "2024") {
		t.Errorf("file name %q not derived from timestamp", fileName)
	}
	if !strings.HasSuffix(fileName, ".tar.gz") {
		t.Errorf("file name %q missing archive suffix", fileName)
	}
	if err := ValidateBackupFileName(fileName); err != nil {
		t.Errorf("generated name fails own validation: %v", err)
	}
	if !strings.Contains(script, fileName) {
		t.Error("script does not reference the generated file name")
	}
	if !strings.Contains(script, "__BACKUP_DONE__") {
		t.Error("script missing completion sentinel")
	}
}

func TestBackupCreateScriptGatesSentinelOnTar(t *testing.T) {
	script, _ := BackupCreateScript("mc", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	// The archive step records its own status; || true only keeps set -e
	// from aborting before the server is restarted.
	if !strings.Contains(script, "&& TAR_OK=1 || true") {
		t.Fatalf("tar status not captured:\n%s", script)
	}
	gate := strings.Index(script, `if [ -n "$TAR_OK" ]`)
	sentinel := strings.Index(script, "__BACKUP_DONE__")
	if gate < 0 || sentinel < gate {
		t.Errorf("sentinel not gated on tar status:\n%s", script)
	}
	// A failed archive must surface as a non-zero exit, never the sentinel.
	if !strings.Contains(script, "exit 1") {
		t.Errorf("failed archive does not fail the script:\n%s", script)
	}
	if strings.Count(script, "__BACKUP_DONE__") != 1 {
		t.Errorf("sentinel must appear only inside the gate:\n%s", script)
	}
}

func TestBackupRestoreScript(t *testing.T) {
	script := BackupRestoreScript("mc", "backup-2024.tar.gz")
	if !strings.Contains(script, "backup-2024.tar.gz") {
		t.Error("script missing file name")
	}
	if !strings.Contains(script, "__RESTORE_DONE__") {
		t.Error("script missing completion sentinel")
	}
}

func TestBackupDeleteCommand(t *testing.T) {
	cmd := BackupDeleteCommand("mc", "old.tar.gz")
	if cmd != "rm -f /home/mc/minecraft-server/backups/old.tar.gz" {
		t.Errorf("cmd = %q", cmd)
	}
}
