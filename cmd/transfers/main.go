package main

import (
	"os"

	"github.com/fundtrack/transfers/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
