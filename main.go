package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/crillab/plugdep/resolve"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var conflict *resolve.ConflictDetected
		if !errors.As(err, &conflict) {
			fmt.Fprintf(os.Stderr, "plugdep: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when dependencies are conflicting, 1 for any other error.
func exitCode(err error) int {
	var conflict *resolve.ConflictDetected
	if errors.As(err, &conflict) {
		return 2
	}
	return 1
}
