// Package main is the entrypoint for the sqlshift CLI.
package main

import (
	"github.com/shiftstack-labs/sqlshift/internal/cli"
)

func main() {
	cli.Execute()
}
