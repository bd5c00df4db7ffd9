// Package profile gates runtime profiling behind the pprof build tag.
// Binaries built without the tag carry no profiling dependencies, and every
// entry point is safely callable in both configurations.
package profile

// Tag is the build tag enabling profiling support. It doubles as the
// default output subdirectory for profiling runs.
const Tag = "pprof"

// Config supplies the profiling mode, output path, and quiet flag.
// The zero-behavior Config returns an empty mode, which disables profiling.
type Config func() (mode, path string, quiet bool)

// Start initializes the profiler and returns an interface for stopping it.
//
// If the pprof build tag or the configured mode are unset, Start returns a
// no-op implementation. Both Start and Stop are always safely callable.
func (c Config) Start() interface{ Stop() } {
	if c == nil {
		return ignore{}
	}

	mode, path, quiet := c()
	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode returns a functional option for setting the profiling mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		return func() (string, string, bool) {
			_, path, quiet := c()

			return mode, path, quiet
		}
	}
}

// WithPath returns a functional option for setting the output directory.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		return func() (string, string, bool) {
			mode, _, quiet := c()

			return mode, path, quiet
		}
	}
}

// WithQuiet returns a functional option for suppressing profiler logging.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		return func() (string, string, bool) {
			mode, path, _ := c()

			return mode, path, quiet
		}
	}
}

type ignore struct{}

func (ignore) Stop() {}
