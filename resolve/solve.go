package resolve

import (
	"github.com/sirupsen/logrus"

	"github.com/crillab/plugdep/explain"
	"github.com/crillab/plugdep/expr"
	"github.com/crillab/plugdep/plugin"
)

// Stats are statistics about a search.
type Stats struct {
	Decisions int // Number of bindings tried
	Leaves    int // Number of complete bindings evaluated
	Failures  int // Number of complete bindings that falsified the formula
	MaxDepth  int // Maximum number of simultaneous bindings
}

// A binding is a decision on the trail.
type binding struct {
	v   plugin.SelectedVersion
	val bool
}

// A solver is a backtracking search over the free variables of a formula.
// Decisions are pushed on the trail, and popped on backtrack.
type solver struct {
	l     *logrus.Logger
	trail []binding
	stats Stats
}

// Solve searches a binding of the free variables of f that makes it true.
// The free variable chosen at each step is the greatest one; it is bound to true first, then to false.
// On success, the result lists the variables that were bound to true, in decision order.
// Otherwise, it holds the conflicts met at each failing leaf of the search, in search order.
func Solve(f expr.Formula) (Result, Stats) {
	return New(nil).Solve(f)
}

func (s *solver) solve(f expr.Formula) (ok bool, conflicts []explain.Conflict) {
	depth := len(s.trail)
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}
	free := f.Free()
	if len(free) == 0 {
		return s.leaf(f)
	}
	v := free[len(free)-1]
	for _, val := range [...]bool{true, false} {
		s.stats.Decisions++
		if s.l.Level >= logrus.DebugLevel {
			s.l.WithFields(logrus.Fields{
				"depth": depth,
				"var":   v.String(),
				"value": val,
				"free":  len(free),
			}).Debug("Binding variable")
		}
		s.trail = append(s.trail, binding{v: v, val: val})
		ok, cs := s.solve(f.Replace(v, val))
		if ok {
			return true, nil
		}
		conflicts = append(conflicts, cs...)
		s.trail = s.trail[:depth]
	}
	return false, conflicts
}

// leaf evaluates f, which has no free variable left.
func (s *solver) leaf(f expr.Formula) (bool, []explain.Conflict) {
	s.stats.Leaves++
	var tr expr.Trace
	if f.Eval(&tr) {
		if s.l.Level >= logrus.DebugLevel {
			s.l.WithFields(logrus.Fields{
				"depth": len(s.trail),
				"edges": len(tr),
			}).Debug("Found satisfying binding")
		}
		return true, nil
	}
	s.stats.Failures++
	conflicts := explain.Extract(tr)
	if s.l.Level >= logrus.DebugLevel {
		s.l.WithFields(logrus.Fields{
			"depth":     len(s.trail),
			"edges":     len(tr),
			"conflicts": len(conflicts),
		}).Debug("Binding falsifies formula, backtracking")
	}
	return false, conflicts
}

// selected returns the variables bound to true, in decision order.
func (s *solver) selected() []plugin.SelectedVersion {
	var res []plugin.SelectedVersion
	for _, b := range s.trail {
		if b.val {
			res = append(res, b.v)
		}
	}
	return res
}
