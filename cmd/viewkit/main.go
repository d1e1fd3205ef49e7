// Command viewkit renders legends from yaml models and audits the resulting
// view trees.
package main

import (
	"os"

	"github.com/go-drift/viewkit/cmd/viewkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
