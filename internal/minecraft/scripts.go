package minecraft

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftops/panel/internal/streamop"
)

// BackupCreateScript stops the server, archives the world directory into a
// timestamped tarball, and restarts the server. The stop/start pair uses
// || true so a server that was not running does not abort the backup, but
// the completion sentinel is gated on tar itself: a failed archive must not
// report success.
func BackupCreateScript(user string, now time.Time) (script, fileName string) {
	tag := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15-04-05Z"))
	fileName = fmt.Sprintf("backup_%s.tar.gz", tag)
	script = fmt.Sprintf(`set -e
echo "--- Creating backup ---"
sudo systemctl stop %[1]s || true
mkdir -p %[2]s
cd %[3]s
TAR_OK=
tar -czf %[2]s/%[4]s world && TAR_OK=1 || true
sudo systemctl start %[1]s || true
if [ -n "$TAR_OK" ]; then
  echo "%[5]s FILE=%[4]s"
else
  echo "[ERROR] Archive creation failed"
  exit 1
fi
`, ServiceName, BackupDir(user), ServerDir(user), fileName, streamop.BackupDone)
	return script, fileName
}

// BackupRestoreScript replaces the world directory with the named backup's
// contents. The file name must already be validated by the caller.
func BackupRestoreScript(user, fileName string) string {
	return fmt.Sprintf(`set -e
echo "--- Restoring backup: %[4]s ---"
sudo systemctl stop %[1]s || true
cd %[2]s
rm -rf world
tar -xzf %[3]s/%[4]s
sudo systemctl start %[1]s || true
echo "%[5]s FILE=%[4]s"
`, ServiceName, ServerDir(user), BackupDir(user), fileName, streamop.RestoreDone)
}

// UninstallScript performs a deep clean: stops and removes the service,
// kills stray processes bound to the server port, and deletes the install
// directory and retained logs. Re-runnable; every step tolerates the thing
// it removes being already gone.
func UninstallScript(user string) string {
	return fmt.Sprintf(`LOG_FILE=%[1]s
exec > >(tee "$LOG_FILE") 2>&1
echo "--- Removing server installation ---"
sudo systemctl stop %[2]s 2>/dev/null || true
sudo systemctl disable %[2]s 2>/dev/null || true
sudo rm -f /etc/systemd/system/%[2]s.service
sudo systemctl daemon-reload
sudo systemctl reset-failed 2>/dev/null || true
sudo fuser -k %[3]d/tcp 2>/dev/null || true
rm -rf %[4]s
echo "--- Removal finished ---"
echo "%[5]s"
`, InstallLogPath(user), ServiceName, Port, ServerDir(user), streamop.UninstallDone)
}

// FirewallScript opens the SSH and game-server ports in UFW and enables it.
func FirewallScript() string {
	return fmt.Sprintf(`echo "--- Configuring UFW ---"
sudo ufw allow 22/tcp
sudo ufw allow %[1]d/tcp
sudo ufw allow %[1]d/udp
sudo ufw --force enable
echo "Active rules:"
sudo ufw status numbered
echo "--- Done ---"
`, Port)
}

// ExportArchiveCommand packs the whole server directory into a temporary
// tarball for download. The caller streams the archive via SFTP and removes
// it afterwards.
func ExportArchiveCommand(user string) string {
	return fmt.Sprintf("tar -czf %s -C %s .", ExportArchivePath(user), ServerDir(user))
}
