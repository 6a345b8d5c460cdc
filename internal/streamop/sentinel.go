package streamop

import "strings"

// Marker is a named completion sentinel. A script signals definitive success
// by printing a line of the form
//
//	__<NAME>_DONE__ KEY1=value1 KEY2=value2 ...
//
// as its final step. Values contain no whitespace by construction (the
// scripts emit shell-variable expansions of single tokens). The first
// occurrence of the marker wins; anything before it on the line is ignored,
// so markers survive being prefixed by log timestamps.
type Marker string

// Sentinels for the operations the panel runs.
const (
	InstallDone   Marker = "__INSTALL_DONE__"
	BackupDone    Marker = "__BACKUP_DONE__"
	RestoreDone   Marker = "__RESTORE_DONE__"
	UninstallDone Marker = "__UNINSTALL_DONE__"
)

// String returns the literal marker token.
func (m Marker) String() string { return string(m) }

// Find scans transcript for the marker and, when present, parses the
// key=value pairs that follow it on the same line.
func (m Marker) Find(transcript string) (map[string]string, bool) {
	for _, line := range strings.Split(transcript, "\n") {
		idx := strings.Index(line, string(m))
		if idx < 0 {
			continue
		}
		fields := make(map[string]string)
		rest := strings.TrimSpace(line[idx+len(m):])
		for _, tok := range strings.Fields(rest) {
			k, v, ok := strings.Cut(tok, "=")
			if !ok || k == "" {
				continue
			}
			fields[k] = v
		}
		return fields, true
	}
	return nil, false
}
