package minecraft

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/craftops/panel/internal/streamop"
)

// ServerType selects which server distribution the installer downloads.
type ServerType string

const (
	TypeVanilla ServerType = "vanilla"
	TypePaper   ServerType = "paper"
	TypeFabric  ServerType = "fabric"
)

// InstallOptions parameterizes one installer run. All fields are validated
// before any script text is built.
type InstallOptions struct {
	Type       ServerType
	Version    string
	Properties map[string]string
	MinRAM     string
	MaxRAM     string
}

var (
	versionPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	ramPattern     = regexp.MustCompile(`^\d+[MG]$`)
	propKeyPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Validate rejects any option that could break out of the generated script.
// RAM values fall back to defaults rather than failing, matching the
// installer's forgiving handling of optional tuning knobs.
func (o *InstallOptions) Validate() error {
	switch o.Type {
	case TypeVanilla, TypePaper, TypeFabric:
	default:
		return fmt.Errorf("unknown server type %q", o.Type)
	}
	if !versionPattern.MatchString(o.Version) {
		return fmt.Errorf("invalid version %q", o.Version)
	}
	for k, v := range o.Properties {
		if !propKeyPattern.MatchString(k) {
			return fmt.Errorf("invalid property key %q", k)
		}
		if err := validatePropertyValue(v); err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
	}
	if !ramPattern.MatchString(o.MinRAM) {
		o.MinRAM = "4G"
	}
	if !ramPattern.MatchString(o.MaxRAM) {
		o.MaxRAM = "8G"
	}
	return nil
}

// validatePropertyValue rejects characters with meaning inside the
// double-quoted heredoc the installer writes properties through.
func validatePropertyValue(v string) error {
	if strings.ContainsAny(v, "`$\\\"\n\r\x00") {
		return fmt.Errorf("value contains shell metacharacters")
	}
	return nil
}

// propertiesFileBody renders options as server.properties lines, translating
// the UI's dashed keys back to the dotted names the server expects.
// Keys are sorted so the generated script is deterministic.
func (o *InstallOptions) propertiesFileBody() string {
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", strings.ReplaceAll(k, "-", "."), o.Properties[k])
	}
	return b.String()
}

// InstallScript builds the full installer pipeline for the given user and
// options. The script:
//
//  1. tears down any prior install (stop/disable service, remove the unit,
//     kill port stragglers, delete the old directory) so re-runs are safe,
//  2. installs system dependencies and opens the OS firewall,
//  3. downloads the requested server distribution,
//  4. writes server.properties and accepts the EULA,
//  5. installs a systemd unit running the server inside screen,
//  6. prints the InstallDone sentinel with the resulting address fields.
//
// All output is mirrored to the retained install log via exec redirection so
// the transcript survives a disconnected client. set -e aborts on the first
// failing step; the ERR trap records the failing line in the log.
func InstallScript(user string, opts InstallOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	var download, jarName string
	switch opts.Type {
	case TypeVanilla:
		jarName = "server.jar"
		download = fmt.Sprintf(`MANIFEST_URL=$(curl -s https://piston-meta.mojang.com/mc/game/version_manifest_v2.json | jq -r --arg ver "%s" '.versions[] | select(.id == $ver) | .url')
DOWNLOAD_URL=$(curl -s $MANIFEST_URL | jq -r '.downloads.server.url')
wget -q -O server.jar "$DOWNLOAD_URL"`, opts.Version)
	case TypePaper:
		jarName = "server.jar"
		download = fmt.Sprintf(`BUILD=$(curl -s https://api.papermc.io/v2/projects/paper/versions/%[1]s/builds | jq -r '.builds[-1].build')
wget -q -O server.jar "https://api.papermc.io/v2/projects/paper/versions/%[1]s/builds/${BUILD}/downloads/paper-%[1]s-${BUILD}.jar"`, opts.Version)
	case TypeFabric:
		jarName = "fabric-server-launch.jar"
		download = fmt.Sprintf(`FABRIC_INSTALLER_URL=$(curl -s "https://meta.fabricmc.net/v2/versions/installer" | jq -r '.[0].url')
wget -q -O fabric-installer.jar "$FABRIC_INSTALLER_URL"
java -jar fabric-installer.jar server -mcversion %s -downloadMinecraft`, opts.Version)
	}

	script := fmt.Sprintf(`#!/bin/bash
set -e
LOG_FILE=%[1]s
rm -f "$LOG_FILE"
touch "$LOG_FILE"
exec 3>&1
exec >>"$LOG_FILE" 2>&1

log(){ echo "$1"; echo "$1" >&3; }
trap 'log "[ERROR] line $LINENO: unexpected failure, see $LOG_FILE"' ERR

SERVER_DIR=%[2]s
JAR_NAME=%[3]q

log "--- Starting install (type: %[4]s, version: %[5]s) ---"
log "Step 1/6: Removing previous install."
sudo systemctl stop %[6]s &>/dev/null || log "Info: service not active."
sudo systemctl disable %[6]s &>/dev/null || log "Info: service not enabled."
sudo rm -f /etc/systemd/system/%[6]s.service
sudo systemctl daemon-reload
sudo systemctl reset-failed
sudo fuser -k %[7]d/tcp 2>/dev/null || true
rm -rf $SERVER_DIR
mkdir -p $SERVER_DIR
cd $SERVER_DIR
log "Cleanup done."

log "Step 2/6: Installing system dependencies..."
sudo apt-get update -qq
sudo apt-get install -y -qq openjdk-21-jdk wget jq screen ufw psmisc
log "Dependencies installed."

log "Step 2.5/6: Configuring OS firewall (UFW)..."
sudo ufw allow 22/tcp
sudo ufw allow %[7]d/tcp
sudo ufw allow %[7]d/udp
sudo ufw --force enable
log "Firewall configured."

log "Step 3/6: Downloading server files (this can take a while)..."
%[8]s
log "Download done."

log "Step 4/6: Writing server configuration..."
cat > server.properties << '__PROPS__'
%[9]senable-rcon=false
__PROPS__

log "Step 4.5/6: Accepting the EULA..."
java -Xmx1024M -Xms1024M -jar $JAR_NAME nogui &
PID=$!
sleep 15
kill $PID || true
if [ -f "eula.txt" ]; then
  sed -i 's/eula=false/eula=true/g' eula.txt
  log "EULA accepted."
else
  log "eula.txt not found; the server may fail to start."
fi

log "Step 5/6: Creating start.sh..."
cat > start.sh << __SCRIPT__
#!/bin/bash
/usr/bin/java -Xmx%[10]s -Xms%[11]s -jar $JAR_NAME nogui
__SCRIPT__
chmod +x start.sh

log "Step 6/6: Creating systemd service..."
sudo tee /etc/systemd/system/%[6]s.service >/dev/null << __UNIT__
[Unit]
Description=Minecraft Server
After=network.target

[Service]
User=%[12]s
WorkingDirectory=$SERVER_DIR
ExecStart=/usr/bin/screen -DmS %[13]s -L -Logfile $SERVER_DIR/screen.log $SERVER_DIR/start.sh
ExecStop=/usr/bin/screen -S %[13]s -p 0 -X stuff "stop\r"
Restart=on-failure

[Install]
WantedBy=multi-user.target
__UNIT__
sudo systemctl daemon-reload
sudo systemctl enable %[6]s
sudo systemctl start %[6]s

SERVER_IP=$(curl -s ifconfig.me)
SERVER_PORT=$(grep -E '^server-port=' server.properties | cut -d= -f2)
SERVER_NAME=$(grep -E '^server-name=' server.properties | cut -d= -f2)
SERVER_MOTD=$(grep -E '^motd=' server.properties | cut -d= -f2)
log "%[14]s IP=${SERVER_IP} PORT=${SERVER_PORT} NAME=${SERVER_NAME} MOTD=${SERVER_MOTD}"
`,
		InstallLogPath(user),        // 1
		ServerDir(user),             // 2
		jarName,                     // 3
		opts.Type,                   // 4
		opts.Version,                // 5
		ServiceName,                 // 6
		Port,                        // 7
		download,                    // 8
		opts.propertiesFileBody(),   // 9
		opts.MaxRAM,                 // 10
		opts.MinRAM,                 // 11
		user,                        // 12
		ScreenSession,               // 13
		streamop.InstallDone,        // 14
	)
	return script, nil
}
