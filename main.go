package main

import (
	"os"

	"github.com/T-USMANI24/hr-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
