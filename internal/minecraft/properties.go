package minecraft

import (
	"fmt"
	"sort"
	"strings"
)

// ParseProperties decodes a server.properties file into a map. Dotted keys
// are translated to dashed form for the UI ("server-port" for
// "server.port"); comments and blank lines are dropped. Values keep any
// embedded '=' characters.
func ParseProperties(content string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		uiKey := strings.ReplaceAll(strings.TrimSpace(key), ".", "-")
		props[uiKey] = strings.TrimSpace(value)
	}
	return props
}

// EncodeProperties renders a UI property map back to server.properties
// format, translating dashed keys to dotted names. Keys are sorted for a
// stable file. Values are validated the same way the installer validates
// them even though the file is written via SFTP, keeping one rule for what
// a property may contain.
func EncodeProperties(props map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		if !propKeyPattern.MatchString(k) {
			return nil, fmt.Errorf("invalid property key %q", k)
		}
		if err := validatePropertyValue(props[k]); err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", strings.ReplaceAll(k, "-", "."), props[k])
	}
	return []byte(b.String()), nil
}
