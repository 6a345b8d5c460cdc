package minecraft

import (
	"encoding/json"
	"fmt"
	"strings"
)

// playersSplit separates the two JSON documents in PlayersCommand output.
const playersSplit = "---SPLIT---"

// Player is one entry from ops.json or whitelist.json.
type Player struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// PlayersCommand prints ops.json and whitelist.json separated by a marker,
// substituting empty lists for missing files.
func PlayersCommand(user string) string {
	dir := ServerDir(user)
	return fmt.Sprintf(`[ -f %[1]s/ops.json ] && cat %[1]s/ops.json || echo "[]"
echo "%[2]s"
[ -f %[1]s/whitelist.json ] && cat %[1]s/whitelist.json || echo "[]"`, dir, playersSplit)
}

// ParsePlayers decodes PlayersCommand output into the two player lists.
func ParsePlayers(output string) (ops, whitelist []Player, err error) {
	opsStr, wlStr, ok := strings.Cut(output, playersSplit)
	if !ok {
		return nil, nil, fmt.Errorf("malformed player list output")
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(opsStr)), &ops); err != nil {
		return nil, nil, fmt.Errorf("parse ops.json: %w", err)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(wlStr)), &whitelist); err != nil {
		return nil, nil, fmt.Errorf("parse whitelist.json: %w", err)
	}
	return ops, whitelist, nil
}

// PlayerList selects which list a player action targets.
type PlayerList string

// PlayerAction adds or removes a player from a list.
type PlayerAction string

const (
	ListOps       PlayerList = "ops"
	ListWhitelist PlayerList = "whitelist"

	PlayerAdd    PlayerAction = "add"
	PlayerRemove PlayerAction = "remove"
)

// playerConsoleCommands maps (list, action) to the console command template.
var playerConsoleCommands = map[string]string{
	"ops-add":          "op %s",
	"ops-remove":       "deop %s",
	"whitelist-add":    "whitelist add %s",
	"whitelist-remove": "whitelist remove %s",
}

// PlayerCommand builds the console line managing username on a list. The
// username must already be validated against the strict argument charset;
// this function is the last gate before shell text is produced.
func PlayerCommand(list PlayerList, action PlayerAction, username string) (string, error) {
	tmpl, ok := playerConsoleCommands[fmt.Sprintf("%s-%s", list, action)]
	if !ok {
		return "", fmt.Errorf("unknown player action %s-%s", list, action)
	}
	return fmt.Sprintf(tmpl, username), nil
}

// WhitelistReloadCommand makes the server re-read whitelist.json.
func WhitelistReloadCommand() string {
	return "whitelist reload"
}
