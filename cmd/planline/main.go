package main

import (
	"fmt"
	"os"

	"github.com/me/planline/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "planline:", err)
		os.Exit(1)
	}
}
