// Package rlog is the checker's verbosity-gated debug log. Funxy itself
// carries no structured logging dependency (see internal/config.IsTestMode
// / IsLSPMode for the ambient pattern it uses instead); this mirrors that
// rather than importing a logging framework the teacher doesn't use.
package rlog

import (
	"fmt"
	"log"
	"os"
)

// Verbose gates Debugf/Tracef output. Set once at startup, the same way
// config.IsTestMode and config.IsLSPMode are set once in funxy's main.
var Verbose = false

var std = log.New(os.Stderr, "", log.LstdFlags)

func Debugf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	std.Output(2, fmt.Sprintf("debug: "+format, args...))
}

func Tracef(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	std.Output(2, fmt.Sprintf("trace: "+format, args...))
}
