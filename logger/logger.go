// Package logger provides the library's single, overridable diagnostic
// hook. The parsing path never imports a logging framework of its own;
// host applications that want these messages wire SetLogger to whatever
// they already use.
package logger

// Level distinguishes a recoverable heuristic (Debug, e.g. "a stream's
// declared /Length looked wrong, falling back to scanning for
// endstream") from a hard failure path being reported for visibility
// (Error).
type Level string

const (
	DebugLevel Level = "debug"
	ErrorLevel Level = "error"
)

// Func is the shape of a log callback: a level, a message, and optional
// key/value pairs for structured fields.
type Func func(level Level, msg string, keyvals ...interface{})

var current Func = func(Level, string, ...interface{}) {}

// SetLogger installs f as the package-wide log sink. Passing nil restores
// the default no-op sink.
func SetLogger(f Func) {
	if f == nil {
		f = func(Level, string, ...interface{}) {}
	}
	current = f
}

// Debug reports a recoverable condition.
func Debug(msg string, keyvals ...interface{}) { current(DebugLevel, msg, keyvals...) }

// Error reports a condition the caller should be aware of even though
// parsing did not hard-fail.
func Error(msg string, keyvals ...interface{}) { current(ErrorLevel, msg, keyvals...) }
