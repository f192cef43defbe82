package main

import (
	"os"

	"github.com/forgelabs/forgelabs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
