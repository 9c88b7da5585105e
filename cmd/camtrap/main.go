package main

import (
	"fmt"
	"os"

	"github.com/wildeye/camtrap/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "camtrap: %v\n", err)
		os.Exit(1)
	}
}
