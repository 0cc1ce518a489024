package main

import (
	"os"

	"github.com/voxnotes/voxnotes/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
