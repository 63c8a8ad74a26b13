// Package main provides the jorf-reader CLI: it reads naturalization
// decrees from Journal Officiel PDFs and looks persons up in them.
package main

import (
	"os"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
