package minecraft

import (
	"reflect"
	"strings"
	"testing"
)

func TestServerPathConfinement(t *testing.T) {
	cases := []struct {
		rel  string
		want string
	}{
		{"", "/home/mc/minecraft-server"},
		{".", "/home/mc/minecraft-server"},
		{"world", "/home/mc/minecraft-server/world"},
		{"world/region/r.0.0.mca", "/home/mc/minecraft-server/world/region/r.0.0.mca"},
		{"/world", "/home/mc/minecraft-server/world"},
		{"logs//latest.log", "/home/mc/minecraft-server/logs/latest.log"},
	}
	for _, tc := range cases {
		got, err := ServerPath("mc", tc.rel)
		if err != nil {
			t.Errorf("ServerPath(%q): %v", tc.rel, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ServerPath(%q) = %q, want %q", tc.rel, got, tc.want)
		}
	}
}

func TestServerPathRejectsEscapes(t *testing.T) {
	hostile := []string{
		"..",
		"../",
		"../../etc/passwd",
		"world/../../other",
		"/../etc/shadow",
		"a\x00b",
		"a\nb",
	}
	for _, rel := range hostile {
		if _, err := ServerPath("mc", rel); err == nil {
			t.Errorf("ServerPath(%q) accepted", rel)
		}
	}
}

func TestListFilesCommandEscapesQuotes(t *testing.T) {
	cmd := ListFilesCommand("/home/mc/minecraft-server/it's here")
	if !strings.Contains(cmd, `'/home/mc/minecraft-server/it'\''s here'`) {
		t.Errorf("cmd = %q", cmd)
	}
	if !strings.Contains(cmd, "-maxdepth 1") || !strings.Contains(cmd, "-mindepth 1") {
		t.Errorf("cmd lists more than one level: %q", cmd)
	}
}

func TestParseFileList(t *testing.T) {
	output := "world\td\nserver.jar\tf\nlink\tl\n\nmalformed line\n"
	got := ParseFileList(output)
	want := []FileEntry{
		{Name: "world", Type: "dir"},
		{Name: "server.jar", Type: "file"},
		{Name: "link", Type: "file"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %+v, want %+v", got, want)
	}
}

func TestParseFileListEmpty(t *testing.T) {
	if got := ParseFileList(""); got != nil {
		t.Errorf("empty listing = %+v", got)
	}
}
