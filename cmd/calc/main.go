package main

import (
	"os"

	"github.com/pengelbrecht/calc/cmd/calc/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return cmd.Execute(args, os.Stdout, os.Stderr)
}
