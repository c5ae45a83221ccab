package resolve

import (
	"fmt"
	"strings"

	"github.com/crillab/plugdep/explain"
	"github.com/crillab/plugdep/plugin"
)

// A Result is the outcome of a resolution.
// It is either a *ResolvedDependencies or a *ConflictDetected.
type Result interface {
	isResult()
}

// ResolvedDependencies is the result of a successful resolution.
type ResolvedDependencies struct {
	// Selected lists the versions to install, in the order they were decided.
	// No two of them share the same plugin name.
	Selected []plugin.SelectedVersion
}

func (*ResolvedDependencies) isResult() {}

// ConflictDetected is the result of a failed resolution.
// It is also an error, so that callers can propagate it as such.
type ConflictDetected struct {
	Conflicts []explain.Conflict
}

func (*ConflictDetected) isResult() {}

func (c *ConflictDetected) Error() string {
	if len(c.Conflicts) == 0 {
		return "could not resolve dependencies"
	}
	strs := make([]string, len(c.Conflicts))
	for i, conflict := range c.Conflicts {
		strs[i] = conflict.String()
	}
	return fmt.Sprintf("could not resolve dependencies: %s", strings.Join(strs, " | "))
}
