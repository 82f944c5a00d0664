package main

import (
	"fmt"
	"os"

	"cf-upload/internal/cli"
)

// Version is injected at build time.
var Version = "v0.1.0-dev"

func main() {
	cli.Version = Version
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
