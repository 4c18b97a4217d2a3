package main

import (
	"os"

	"github.com/grovetools/toolchange/cmd"
)

func main() {
	os.Exit(cmd.Execute(cmd.NewRootCmd(), os.Args[1:]))
}
