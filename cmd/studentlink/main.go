package main

import (
	"os"

	"github.com/noah-isme/studentlink-portal/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
