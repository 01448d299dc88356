package main

import (
	"os"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
