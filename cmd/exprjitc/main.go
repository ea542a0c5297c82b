package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-exprjit/cmd/exprjitc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
