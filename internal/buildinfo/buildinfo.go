// Package buildinfo exposes compile-time metadata of the yama binaries.
package buildinfo

import (
	"fmt"
	"io"
)

// Overridden via -ldflags "-X github.com/dmitrijs2005/yama/internal/buildinfo.Version=..."
var (
	Version   = "N/A"
	Commit    = "N/A"
	BuildDate = "N/A"
)

func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
