package minecraft

import (
	"strings"
	"testing"
)

func TestParseProperties(t *testing.T) {
	content := `#Minecraft server properties
#Mon Jan 01 00:00:00 UTC 2024
server.port=25565
motd=Welcome to the server
level-name=world
difficulty=normal

enable.rcon=false
`
	props := ParseProperties(content)
	if props["server-port"] != "25565" {
		t.Errorf("server-port = %q", props["server-port"])
	}
	if props["motd"] != "Welcome to the server" {
		t.Errorf("motd = %q", props["motd"])
	}
	if props["level-name"] != "world" {
		t.Errorf("level-name = %q", props["level-name"])
	}
	if props["enable-rcon"] != "false" {
		t.Errorf("enable-rcon = %q", props["enable-rcon"])
	}
	if _, ok := props["#Minecraft server properties"]; ok {
		t.Error("comment leaked into properties")
	}
}

func TestParsePropertiesKeepsEmbeddedEquals(t *testing.T) {
	props := ParseProperties("generator-settings={a=1,b=2}\n")
	if props["generator-settings"] != "{a=1,b=2}" {
		t.Errorf("generator-settings = %q", props["generator-settings"])
	}
}

func TestEncodePropertiesRoundTrip(t *testing.T) {
	in := map[string]string{
		"server-port": "25565",
		"motd":        "A Minecraft Server",
		"difficulty":  "hard",
	}
	data, err := EncodeProperties(in)
	if err != nil {
		t.Fatalf("EncodeProperties: %v", err)
	}
	if !strings.Contains(string(data), "server.port=25565\n") {
		t.Errorf("dashed key not translated back: %s", data)
	}

	out := ParseProperties(string(data))
	for k, v := range in {
		if out[k] != v {
			t.Errorf("round trip lost %s: %q != %q", k, out[k], v)
		}
	}
}

func TestEncodePropertiesIsSorted(t *testing.T) {
	data, err := EncodeProperties(map[string]string{"zeta": "1", "alpha": "2"})
	if err != nil {
		t.Fatalf("EncodeProperties: %v", err)
	}
	if strings.Index(string(data), "alpha") > strings.Index(string(data), "zeta") {
		t.Errorf("output not sorted: %s", data)
	}
}

func TestEncodePropertiesRejectsHostileInput(t *testing.T) {
	bad := []map[string]string{
		{"motd": "x`reboot`"},
		{"motd": "x$(id)"},
		{"motd": "x\nserver.port=1"},
		{"MOTD": "upper keys rejected"},
		{"key with space": "x"},
	}
	for _, props := range bad {
		if _, err := EncodeProperties(props); err == nil {
			t.Errorf("EncodeProperties accepted %v", props)
		}
	}
}
