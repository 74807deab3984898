// The main package for the newsmapper executable.
package main

import (
	"github.com/globonews/newsmapper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
