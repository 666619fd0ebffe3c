package main

import (
	"os"

	"main/cmd/marketmaker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
