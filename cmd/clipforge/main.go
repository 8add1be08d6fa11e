package main

import (
	"os"

	"github.com/clipforge/clipforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
