package main

import (
	"os"

	"github.com/similr/similr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
