package main

import (
	"os"

	"github.com/we-ne/sentinel/internal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
