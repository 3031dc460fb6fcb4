// SPDX-License-Identifier: EPL-2.0

// Package main provides the chirp command line tool.
//
// Usage:
//
//	chirp [flags] <command> [args]
//
// Commands:
//
//	send      - transmit an identifier over sound (or write it as WAV)
//	listen    - print chirps heard on the microphone
//	decode    - scan audio recordings for chirps
//	gen       - generate random identifiers
//	protocols - list the built-in protocols
//	version   - print the version
package main

import (
	"fmt"
	"os"

	"github.com/soniclink/chirp/cmd/chirp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
