package main

import (
	"os"

	"github.com/hyperjump/ragbench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
