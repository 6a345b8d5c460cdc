package minecraft

import (
	"strings"
	"testing"
)

func TestInstallOptionsValidate(t *testing.T) {
	opts := InstallOptions{Type: TypeVanilla, Version: "1.20.4", MinRAM: "2G", MaxRAM: "4G"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
}

func TestInstallOptionsValidateRejects(t *testing.T) {
	bad := []InstallOptions{
		{Type: "bedrock", Version: "1.20.4"},
		{Type: TypeVanilla, Version: ""},
		{Type: TypeVanilla, Version: "1.20.4; rm -rf /"},
		{Type: TypeVanilla, Version: "1.20.4", Properties: map[string]string{"motd": "x`id`"}},
		{Type: TypeVanilla, Version: "1.20.4", Properties: map[string]string{"Bad Key": "x"}},
	}
	for i, opts := range bad {
		if err := opts.Validate(); err == nil {
			t.Errorf("case %d accepted: %+v", i, opts)
		}
	}
}

func TestInstallOptionsRAMFallback(t *testing.T) {
	opts := InstallOptions{Type: TypePaper, Version: "1.20.4", MinRAM: "lots", MaxRAM: ""}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if opts.MinRAM != "4G" || opts.MaxRAM != "8G" {
		t.Errorf("RAM fallback = %s/%s, want 4G/8G", opts.MinRAM, opts.MaxRAM)
	}
}

func TestInstallScriptContents(t *testing.T) {
	script, err := InstallScript("mc", InstallOptions{
		Type:       TypePaper,
		Version:    "1.20.4",
		MinRAM:     "2G",
		MaxRAM:     "4G",
		Properties: map[string]string{"motd": "My Server", "server-port": "25565"},
	})
	if err != nil {
		t.Fatalf("InstallScript: %v", err)
	}

	for _, want := range []string{
		"set -e",
		"/home/mc/install.log",
		"papermc.io",
		"motd=My Server",
		"server.port=25565",
		"eula=true",
		"-Xmx4G -Xms2G",
		"screen -DmS minecraft",
		"/etc/systemd/system/minecraft.service",
		"__INSTALL_DONE__ IP=${SERVER_IP} PORT=${SERVER_PORT}",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestInstallScriptPerType(t *testing.T) {
	types := map[ServerType]string{
		TypeVanilla: "piston-meta.mojang.com",
		TypePaper:   "papermc.io",
		TypeFabric:  "fabricmc.net",
	}
	for typ, marker := range types {
		script, err := InstallScript("mc", InstallOptions{Type: typ, Version: "1.20.4"})
		if err != nil {
			t.Fatalf("InstallScript(%s): %v", typ, err)
		}
		if !strings.Contains(script, marker) {
			t.Errorf("%s script missing %q", typ, marker)
		}
	}
}

func TestInstallScriptRejectsBadOptions(t *testing.T) {
	if _, err := InstallScript("mc", InstallOptions{Type: TypeVanilla, Version: "$(reboot)"}); err == nil {
		t.Error("hostile version accepted")
	}
}
