package format

import "strings"

// DerefString safely dereferences a *string and returns defaultVal if nil or blank.
func DerefString(s *string, defaultVal string) string {
	if s != nil && strings.TrimSpace(*s) != "" {
		return *s
	}
	return defaultVal
}
