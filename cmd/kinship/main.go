package main

import (
	"os"

	"github.com/civitas/kinship/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
