// Package logx is a thin level-prefix layer over the standard logger.
package logx

import "log"

var verbose bool

// SetVerbose toggles Debugf output.
func SetVerbose(v bool) { verbose = v }

// Debugf logs only when verbose mode is enabled.
func Debugf(format string, v ...any) {
	if verbose {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs an informational message.
func Infof(format string, v ...any) { log.Printf("[INFO] "+format, v...) }

// Warnf logs a recoverable problem.
func Warnf(format string, v ...any) { log.Printf("[WARN] "+format, v...) }
