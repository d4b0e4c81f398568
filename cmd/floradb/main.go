package main

import (
	"os"

	"github.com/florelab/floradb/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
