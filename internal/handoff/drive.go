package handoff

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/width"
)

// NormalizeDrive folds user-typed drive identifiers into canonical form.
// Full-width characters are narrowed ("Ｅ：" becomes "E:"), letters are
// upper-cased, and a bare letter gains its colon. Paths are cleaned.
func NormalizeDrive(input string) string {
	value := strings.TrimSpace(width.Fold.String(input))
	if value == "" {
		return ""
	}
	if isLetter(value[0]) {
		switch {
		case len(value) == 1:
			return strings.ToUpper(value) + ":"
		case len(value) == 2 && value[1] == ':':
			return strings.ToUpper(value)
		case len(value) == 3 && value[1] == ':' && (value[2] == '\\' || value[2] == '/'):
			return strings.ToUpper(value[:2])
		}
	}
	if strings.HasPrefix(value, "/") {
		return filepath.Clean(value)
	}
	return value
}

// ValidateDrive accepts a drive letter ("E:") or an absolute mountpoint.
func ValidateDrive(drive string) error {
	if drive == "" {
		return fmt.Errorf("drive is empty")
	}
	if len(drive) == 2 && drive[1] == ':' && drive[0] >= 'A' && drive[0] <= 'Z' {
		return nil
	}
	if strings.HasPrefix(drive, "/") && !strings.ContainsRune(drive, 0) {
		return nil
	}
	return fmt.Errorf("invalid drive %q", drive)
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
