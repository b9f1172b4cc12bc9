package main

import (
	"os"

	"github.com/bimakw/swap-quoter/cmd/quotecli/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
