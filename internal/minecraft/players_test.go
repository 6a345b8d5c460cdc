package minecraft

import (
	"strings"
	"testing"
)

func TestParsePlayers(t *testing.T) {
	output := `[{"uuid":"069a79f4-44e9-4726-a5be-fca90e38aaf5","name":"Notch","level":4}]
---SPLIT---
[{"uuid":"853c80ef-3c37-49fd-aa49-938b674adae6","name":"jeb_"}]
`
	ops, whitelist, err := ParsePlayers(output)
	if err != nil {
		t.Fatalf("ParsePlayers: %v", err)
	}
	if len(ops) != 1 || ops[0].Name != "Notch" || ops[0].Level != 4 {
		t.Errorf("ops = %+v", ops)
	}
	if len(whitelist) != 1 || whitelist[0].Name != "jeb_" {
		t.Errorf("whitelist = %+v", whitelist)
	}
}

func TestParsePlayersEmptyLists(t *testing.T) {
	ops, whitelist, err := ParsePlayers("[]\n---SPLIT---\n[]\n")
	if err != nil {
		t.Fatalf("ParsePlayers: %v", err)
	}
	if len(ops) != 0 || len(whitelist) != 0 {
		t.Errorf("ops=%v whitelist=%v, want empty", ops, whitelist)
	}
}

func TestParsePlayersMissingSplit(t *testing.T) {
	if _, _, err := ParsePlayers("[]\n"); err == nil {
		t.Error("missing split marker must fail")
	}
}

func TestParsePlayersBadJSON(t *testing.T) {
	if _, _, err := ParsePlayers("not json\n---SPLIT---\n[]\n"); err == nil {
		t.Error("malformed ops.json must fail")
	}
}

func TestPlayerCommand(t *testing.T) {
	tests := []struct {
		list   PlayerList
		action PlayerAction
		want   string
	}{
		{ListOps, PlayerAdd, "op Notch"},
		{ListOps, PlayerRemove, "deop Notch"},
		{ListWhitelist, PlayerAdd, "whitelist add Notch"},
		{ListWhitelist, PlayerRemove, "whitelist remove Notch"},
	}
	for _, tt := range tests {
		got, err := PlayerCommand(tt.list, tt.action, "Notch")
		if err != nil {
			t.Errorf("PlayerCommand(%s, %s): %v", tt.list, tt.action, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PlayerCommand(%s, %s) = %q, want %q", tt.list, tt.action, got, tt.want)
		}
	}
}

func TestPlayerCommandUnknownCombination(t *testing.T) {
	if _, err := PlayerCommand("bans", PlayerAdd, "Notch"); err == nil {
		t.Error("unknown list must be rejected")
	}
	if _, err := PlayerCommand(ListOps, "promote", "Notch"); err == nil {
		t.Error("unknown action must be rejected")
	}
}

func TestPlayersCommandShape(t *testing.T) {
	cmd := PlayersCommand("mc")
	if !strings.Contains(cmd, "ops.json") || !strings.Contains(cmd, "whitelist.json") {
		t.Errorf("command missing roster files: %s", cmd)
	}
	if !strings.Contains(cmd, playersSplit) {
		t.Error("command missing split marker")
	}
}
