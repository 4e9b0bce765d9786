// Package main provides the entry point for the icond daemon and CLI.
package main

import (
	"github.com/neoatlantis/na-gribtools/internal/cli"
)

func main() {
	cli.Execute()
}
