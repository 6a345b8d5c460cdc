package minecraft

import (
	"fmt"
	"strings"
)

// ControlAction is one of the fixed lifecycle operations.
type ControlAction string

const (
	ActionStart   ControlAction = "start"
	ActionStop    ControlAction = "stop"
	ActionRestart ControlAction = "restart"
	ActionStatus  ControlAction = "status"
)

// ControlCommand maps a lifecycle action to its remote command. start and
// restart first remove the stale world lock and kill anything still bound to
// the server port, recovering from an ungracefully terminated prior run.
// Unknown actions return ok == false without building anything.
func ControlCommand(action ControlAction, user string) (string, bool) {
	lock := SessionLockPath(user)
	recover := fmt.Sprintf("rm -f %s && sudo fuser -k %d/tcp 2>/dev/null || true", lock, Port)

	switch action {
	case ActionStart:
		return fmt.Sprintf("%s; sudo systemctl start %s", recover, ServiceName), true
	case ActionStop:
		return fmt.Sprintf("sudo systemctl stop %s", ServiceName), true
	case ActionRestart:
		return fmt.Sprintf("sudo systemctl stop %s; %s; sudo systemctl start %s", ServiceName, recover, ServiceName), true
	case ActionStatus:
		return fmt.Sprintf("sudo systemctl status %s --no-pager", ServiceName), true
	default:
		return "", false
	}
}

// StatusProbe reports service liveness with a deterministic token instead of
// an exit code, so callers can treat "not running" (systemctl exit 3) as
// data rather than an error.
func StatusProbe() string {
	return fmt.Sprintf(`systemctl is-active --quiet %s && echo "ACTIVE" || echo "INACTIVE"`, ServiceName)
}

// ParseStatusProbe interprets StatusProbe output.
func ParseStatusProbe(output string) bool {
	return strings.TrimSpace(output) == "ACTIVE"
}

// ConsoleCommand injects one line of input into the running server console
// via its screen session. Delivery is fire-and-forget: success means the
// line reached the console, not that the server understood it.
func ConsoleCommand(line string) (string, error) {
	escaped, err := escapeForScreen(line)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`/usr/bin/screen -S %s -p 0 -X stuff "%s\r"`, ScreenSession, escaped), nil
}

// ClearConsoleCommand truncates the retained console and install logs.
func ClearConsoleCommand(user string) string {
	screenLog := ScreenLogPath(user)
	return fmt.Sprintf(`> %s; if [ -f %s ]; then > %s; fi`, InstallLogPath(user), screenLog, screenLog)
}

// escapeForScreen makes a console line safe to embed in the double-quoted
// screen stuff argument. Newlines and NULs are rejected outright: a line is
// one line.
func escapeForScreen(line string) (string, error) {
	if strings.ContainsAny(line, "\n\r\x00") {
		return "", fmt.Errorf("console input must be a single line")
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`$`, `\$`,
		"`", "\\`",
	)
	return r.Replace(line), nil
}
