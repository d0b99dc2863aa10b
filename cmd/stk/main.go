// Command stk is a terminal client for a home inventory backend.
package main

import (
	"os"

	_ "github.com/vanderheijden86/stockpile/internal/ttyguard"

	"github.com/vanderheijden86/stockpile/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
