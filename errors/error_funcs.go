package errors

import (
	"fmt"
	"io"
	"os"
)

// OsExit is a variable for testing, so we can mock os.Exit.
var OsExit = os.Exit

// Stderr is where CheckErrorAndPrint writes. Tests replace it.
var Stderr io.Writer = os.Stderr

// verbose toggles stack output in CheckErrorAndPrint.
var verbose bool

// SetVerbose enables detailed error output (context and stack traces).
func SetVerbose(v bool) {
	verbose = v
}

// CheckErrorAndPrint prints a formatted error with its hints and code.
func CheckErrorAndPrint(err error) {
	if err == nil {
		return
	}
	cfg := DefaultFormatterConfig()
	cfg.Verbose = verbose
	fmt.Fprintln(Stderr, Format(err, cfg))
}

// CheckErrorPrintAndExit prints an error message and exits with the error's exit code.
func CheckErrorPrintAndExit(err error) {
	if err == nil {
		return
	}
	CheckErrorAndPrint(err)
	Exit(GetExitCode(err))
}

// Exit exits the program with the specified exit code.
func Exit(exitCode int) {
	OsExit(exitCode)
}
