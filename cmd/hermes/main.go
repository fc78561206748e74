package main

import (
	"os"

	"github.com/msto63/hermes/cmd/hermes/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
