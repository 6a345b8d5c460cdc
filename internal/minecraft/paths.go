// Package minecraft holds the domain knowledge for the managed game server:
// remote file layout, control commands, installer and maintenance scripts,
// and the parsers for the structured text those commands produce.
//
// Every remote path is derived from the connecting SSH user, which is
// validated at connect time; no free-form client input is interpolated into
// path strings here.
package minecraft

import "fmt"

// Port is the well-known network port the game server binds.
const Port = 25565

// ServiceName is the systemd unit managing the server process.
const ServiceName = "minecraft"

// ScreenSession is the screen session the server console runs in.
const ScreenSession = "minecraft"

// ServerDir is the install directory on the managed host.
func ServerDir(user string) string {
	return fmt.Sprintf("/home/%s/minecraft-server", user)
}

// InstallLogPath is where install/uninstall transcripts are retained for
// later download.
func InstallLogPath(user string) string {
	return fmt.Sprintf("/home/%s/install.log", user)
}

// ScreenLogPath is the console log written by screen.
func ScreenLogPath(user string) string {
	return ServerDir(user) + "/screen.log"
}

// ScreenLogFallbackPath is screen's default log name, used by older installs.
func ScreenLogFallbackPath(user string) string {
	return ServerDir(user) + "/screenlog.0"
}

// LatestLogPath is the game server's own rotating log.
func LatestLogPath(user string) string {
	return ServerDir(user) + "/logs/latest.log"
}

// SessionLockPath is the world lock file left behind by unclean shutdowns.
func SessionLockPath(user string) string {
	return ServerDir(user) + "/world/session.lock"
}

// PropertiesPath is the server.properties file.
func PropertiesPath(user string) string {
	return ServerDir(user) + "/server.properties"
}

// BackupDir is where world backups are stored.
func BackupDir(user string) string {
	return ServerDir(user) + "/backups"
}

// ExportArchivePath is the temporary archive produced for a full export. It
// lives outside ServerDir so the archive never includes itself.
func ExportArchivePath(user string) string {
	return fmt.Sprintf("/home/%s/server-backup.tar.gz", user)
}
