package main

import (
	"os"

	"github.com/quantumx/quantumx/cmd/quantumx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
