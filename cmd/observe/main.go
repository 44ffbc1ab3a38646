package main

import (
	"fmt"
	"os"

	"github.com/go-drift/observe/cmd/observe/cmd"
	"github.com/go-drift/observe/pkg/errors"
)

func main() {
	defer errors.Recover("observe.main")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
