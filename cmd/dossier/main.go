// Command dossier answers questions about the declassified JFK files.
package main

import (
	"os"

	"github.com/custodia-labs/dossier/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
