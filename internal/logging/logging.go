// Package logging configures the shared debug logger.
//
// User-facing command output goes straight to stdout/stderr with fmt;
// the structured logger carries diagnostics that are hidden unless the
// --verbose flag is set.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Setup configures the default logger. Called once from the root
// command before any subcommand runs.
func Setup(verbose bool, w io.Writer) {
	log.SetOutput(w)
	log.SetReportTimestamp(false)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
