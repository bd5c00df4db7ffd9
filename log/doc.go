// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information, and
// output formats that are applied at logger creation time using functional
// options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//	logger.Info("ready", slog.String("version", "1.0.0"))
//
// A process-wide logger backs the package-level functions; [Config]
// reconfigures it during startup:
//
//	log.Config(log.WithLevel(log.LevelInfo), log.WithPretty(true))
//	log.Warn("deprecated flag", slog.String("flag", "--old"))
//
// Each level has a context-aware variant ([InfoContext] and friends). The
// context-unaware functions obtain their context from
// [DefaultContextProvider], which returns [context.TODO] unless reassigned.
package log
