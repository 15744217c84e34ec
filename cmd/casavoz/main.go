// Package main provides the casavoz CLI tool.
//
// Usage:
//
//	casavoz [flags] <command> [args]
//
// Commands:
//
//	call    - Run a live walkthrough session from the terminal
//	gateway - Run the realtime relay server
package main

import (
	"fmt"
	"os"

	"github.com/casavoz/casavoz/cmd/casavoz/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
