package main

import (
	"context"
	"os"

	"github.com/chatops-lab/chatrelay/pkg/cli"
)

// version is injected at build time via -ldflags
var version = "dev"

func main() {
	// Errors are already logged inside cli.Run; only the exit code matters here
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
