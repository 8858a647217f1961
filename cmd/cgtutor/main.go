package main

import (
	"os"

	"github.com/daichi-lab/cgtutor/internal/interface/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
