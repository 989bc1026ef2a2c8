package main

import (
	"os"

	"github.com/PratikDhanave/idp-hook-bridge/cmd/idpsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
