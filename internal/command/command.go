// Package command defines the fixed allow-list of privileged remote commands
// and the validation applied to user-influenced arguments.
//
// Free-form text never reaches the remote shell through this package: each
// Spec names an absolute binary and fixed leading arguments, and every
// user-supplied argument must match a strict character class before it is
// appended. Anything else is rejected locally, before any remote call.
package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Key identifies an allow-listed remote command.
type Key string

const (
	StartServer   Key = "START_SERVER"
	StopServer    Key = "STOP_SERVER"
	RestartServer Key = "RESTART_SERVER"
	BanPlayer     Key = "BAN_PLAYER"
	RebootHost    Key = "REBOOT_HOST"
)

// Spec is one allow-listed command: an absolute path plus fixed arguments.
type Spec struct {
	Cmd  string
	Args []string
}

var allowed = map[Key]Spec{
	StartServer:   {Cmd: "/bin/systemctl", Args: []string{"start", "minecraft.service"}},
	StopServer:    {Cmd: "/bin/systemctl", Args: []string{"stop", "minecraft.service"}},
	RestartServer: {Cmd: "/bin/systemctl", Args: []string{"restart", "minecraft.service"}},
	BanPlayer:     {Cmd: "/usr/local/bin/mc-ban-player", Args: []string{"--player"}},
	RebootHost:    {Cmd: "/usr/bin/sudo", Args: []string{"/sbin/reboot"}},
}

// argPattern is the only shape a user-supplied argument may take. It covers
// player names, backup file names, and version strings while excluding every
// shell metacharacter.
var argPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateArg reports whether s is safe to pass as a single argument.
func ValidateArg(s string) error {
	if !argPattern.MatchString(s) {
		return fmt.Errorf("invalid argument %q", s)
	}
	return nil
}

// Build resolves key against the allow-list, validates every user argument,
// and returns the final command string. Unknown keys and invalid arguments
// are rejected without touching the remote host.
func Build(key Key, userArgs ...string) (string, error) {
	spec, ok := allowed[key]
	if !ok {
		return "", fmt.Errorf("command not allowed: %s", key)
	}

	args := make([]string, 0, len(spec.Args)+len(userArgs))
	args = append(args, spec.Args...)
	for _, a := range userArgs {
		if err := ValidateArg(a); err != nil {
			return "", err
		}
		args = append(args, a)
	}

	return strings.TrimSpace(spec.Cmd + " " + strings.Join(args, " ")), nil
}
