// Command modelreg serves the model registry over HTTP and runs one-off
// greedy decodes from the command line.
package main

import (
	"fmt"
	"os"

	_ "modelreg/internal/engine/gollama"
	_ "modelreg/internal/engine/llamacpp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "modelreg:", err)
		os.Exit(1)
	}
}
