package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/masahif/find404/internal/cmd"
)

// Version information set by build flags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, BuildTime)
	os.Exit(exitCode(cmd.Execute(), os.Stderr))
}

// exitCode maps the command result to the process exit status.
// Findings are already printed, so only other errors are reported here.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, cmd.ErrFindings) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
