package minecraft

import (
	"fmt"
	"path"
	"strings"
)

// FileEntry is one name in a server directory listing.
type FileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"` // "dir" or "file"
}

// ServerPath resolves a client-supplied relative path against the server
// directory. The result is always confined to ServerDir: paths with
// traversal segments are rejected before any remote command is built.
func ServerPath(user, rel string) (string, error) {
	if strings.ContainsAny(rel, "\x00\n") {
		return "", fmt.Errorf("invalid path %q", rel)
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path %q escapes the server directory", rel)
		}
	}
	base := ServerDir(user)
	full := path.Join(base, strings.TrimPrefix(path.Clean("/"+rel), "/"))
	if full != base && !strings.HasPrefix(full, base+"/") {
		return "", fmt.Errorf("path %q escapes the server directory", rel)
	}
	return full, nil
}

// ListFilesCommand lists one directory level as name<TAB>type records. The
// path comes from ServerPath; single quotes are escaped so the remaining
// characters are inert inside the quoted argument.
func ListFilesCommand(dir string) string {
	escaped := strings.ReplaceAll(dir, "'", `'\''`)
	return fmt.Sprintf(`find '%s' -maxdepth 1 -mindepth 1 -printf '%%f\t%%y\n'`, escaped)
}

// ParseFileList parses ListFilesCommand output. find reports directories as
// type "d"; everything else (regular files, symlinks, sockets) is "file".
func ParseFileList(output string) []FileEntry {
	var entries []FileEntry
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		name, kind, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok || name == "" {
			continue
		}
		entryType := "file"
		if kind == "d" {
			entryType = "dir"
		}
		entries = append(entries, FileEntry{Name: name, Type: entryType})
	}
	return entries
}
