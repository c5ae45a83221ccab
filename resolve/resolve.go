// Package resolve selects compatible plugin versions.
//
// Resolution works in two steps: Build turns an install request and the known candidate
// versions into a boolean formula, then Solve looks for a binding of its variables that
// makes it true, backtracking on failure. When no binding exists, the result lists the
// conflicting requirements met along the search.
package resolve

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/crillab/plugdep/explain"
	"github.com/crillab/plugdep/expr"
	"github.com/crillab/plugdep/plugin"
)

// A Resolver resolves dependencies, logging its progress.
// It holds no state between calls and can be used by several goroutines at once.
type Resolver struct {
	l *logrus.Logger
}

// New returns a resolver logging on l.
// If l is nil, nothing is logged.
func New(l *logrus.Logger) *Resolver {
	if l == nil {
		l = logrus.New()
		l.Out = io.Discard
		l.Level = logrus.PanicLevel
	}
	return &Resolver{l: l}
}

// Resolve selects, for root and every plugin it transitively depends on, one version among
// candidates such that all dependencies of selected versions are fulfilled.
// Candidates map each plugin name to all its known versions, whatever their origin.
// When root is an install request (see plugin.Root), it is not part of the selection.
// Identical conflicts met on several branches of the search are only reported once.
func Resolve(root plugin.Node, candidates map[string][]plugin.Node) Result {
	return New(nil).Resolve(root, candidates)
}

// Resolve is like the Resolve function, but logs on r's logger.
func (r *Resolver) Resolve(root plugin.Node, candidates map[string][]plugin.Node) Result {
	f := Build(root, candidates)
	if r.l.Level >= logrus.DebugLevel {
		r.l.WithFields(logrus.Fields{
			"root":     plugin.Selected(root).String(),
			"plugins":  len(candidates),
			"clauses":  len(expr.Conjuncts(f)),
			"freeVars": len(f.Free()),
		}).Debug("Built dependency formula")
	}
	res, _ := r.Solve(f)
	switch res := res.(type) {
	case *ResolvedDependencies:
		if root.PluginName() == plugin.RootName {
			res.Selected = withoutRoot(res.Selected)
		}
		return res
	case *ConflictDetected:
		res.Conflicts = explain.Unique(res.Conflicts)
		return res
	default:
		panic("invalid result type")
	}
}

// Solve is like the Solve function, but logs on r's logger.
func (r *Resolver) Solve(f expr.Formula) (Result, Stats) {
	s := solver{l: r.l}
	ok, conflicts := s.solve(f)
	if r.l.Level >= logrus.InfoLevel {
		r.l.WithFields(logrus.Fields{
			"decisions": s.stats.Decisions,
			"leaves":    s.stats.Leaves,
			"failures":  s.stats.Failures,
			"maxDepth":  s.stats.MaxDepth,
			"sat":       ok,
		}).Info("Search over")
	}
	if !ok {
		return &ConflictDetected{Conflicts: conflicts}, s.stats
	}
	return &ResolvedDependencies{Selected: s.selected()}, s.stats
}

func withoutRoot(selected []plugin.SelectedVersion) []plugin.SelectedVersion {
	res := make([]plugin.SelectedVersion, 0, len(selected))
	for _, sv := range selected {
		if sv.Name != plugin.RootName {
			res = append(res, sv)
		}
	}
	return res
}
