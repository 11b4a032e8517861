package path

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve expands "~" to the user home directory and makes the path absolute.
func Resolve(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}

	return filepath.Abs(p)
}
