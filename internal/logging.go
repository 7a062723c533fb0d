package internal

import (
	"log"
	"os"
)

// InitLogging routes the standard logger to stdout so journald captures it.
// Verbose adds file:line to every record.
func InitLogging(verbose bool) {
	log.SetOutput(os.Stdout)
	flags := log.LstdFlags | log.Lmicroseconds
	if verbose {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)
}
