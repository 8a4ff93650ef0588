// Package logging constructs the slog loggers used across docket.
//
// It provides a console handler that renders compact key=value lines for
// interactive use and a JSON handler for machine consumption, both behind a
// shared Options surface. Helper constructors (String, Int, Error, ...) keep
// call sites terse, and NewNop supplies the silent logger tests pass around.
package logging
