// ethicsctl runs actions through an ethics pipeline built from a YAML
// configuration file.
//
// Usage:
//
//	ethicsctl run --action <file> [--context <file>] [--config <file>]
//	ethicsctl run --batch <file>
//	ethicsctl stream [--config <file>]
//	ethicsctl plugins [--loaded]
//	ethicsctl validate [--config <file>]
//	ethicsctl import --db <file>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
