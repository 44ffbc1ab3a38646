package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/observe/cmd/observe/internal/scenario"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Execute a scenario file",
		Long: `Execute a yaml scenario against an observable property.

A scenario declares the property configuration (always_notify,
include_previous) and an ordered list of steps: set a value, register a
named subscriber, or unregister one. Every delivered notification is
printed as one line.

Example scenario:

  property:
    include_previous: true
  steps:
    - register: gauge
    - set: "21.5"
    - set: "21.5"
    - set: "22.0"`,
		Usage: "observe run <scenario.yaml>",
		Run:   runScenario,
	})
}

func runScenario(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("scenario file is required\n\nUsage: observe run <scenario.yaml>")
	}

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	return scenario.Run(sc, os.Stdout)
}
