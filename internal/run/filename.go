package run

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename makes an archive filename segment safe across
// filesystems and keeps it short enough to combine with the others.
func sanitizeFilename(s string) string {
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "unknown"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
