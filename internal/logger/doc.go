// Package logger wraps zap for the command-line tool:
//   - a global sugared logger with a console encoder on stderr,
//   - a shared atomic level driven by --log-level,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - leveled shortcuts that take the logger from the context.
package logger
