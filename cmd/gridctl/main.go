package main

import (
	"os"

	"revgrid/cmd/gridctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
