package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the directory name used under the user's config and cache
// roots (for example ~/.config/jarg and ~/.cache/jarg).
//
// It is derived from the executable's base name, so a renamed binary keeps
// its configuration separate, with two substitutions:
//   - "__debug_bin<N>" (dlv's default output) maps to [Name]
//   - a leading dot run is stripped, keeping the directory visible
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name,
			regexp.MustCompile(`^\.+`):             "",
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		return id
	},
)

// ConfigDir returns the directory holding config.yaml and presets.yaml.
// The OS config root is preferred, then ~/.config, then the working
// directory.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the directory for transient files such as profiling
// output. The OS cache root is preferred, then ~/.cache, then the working
// directory.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// userDir resolves a per-user root via the OS lookup, falling back to the
// named dotted directory in the user's home, and finally to the working
// directory.
func userDir(lookup func() (string, error), dotted string) string {
	dir, err := lookup()
	if err == nil {
		return dir
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, dotted)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}
