package main

import (
	"os"

	"github.com/BellezaEmporium/galaxy-integration-ead/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
