package explain

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/plugdep/expr"
)

// Certify returns true iff f is unsatisfiable according to gophersat.
// It is a way to double-check a conflict report without trusting the resolver's own search.
func Certify(f expr.Formula) bool {
	return !expr.Satisfiable(f)
}

// Core returns a Minimal Unsatisfiable Subset of the clauses of f, i.e of its direct subformulas
// if f is a conjunction.
// A MUS is an unsatisfiable subset such that, if any of its clause is removed,
// the remaining clauses become satisfiable. On a dependency formula, it isolates the few
// requirements, selections and exclusions that cannot hold together.
// The deletion algorithm is used: each clause is removed in turn, and put back only if the
// problem became satisfiable without it. It thus calls the SAT solver exactly once per clause.
// Progress is logged at debug level if logger is not nil.
func Core(f expr.Formula, logger *logrus.Logger) ([]expr.Formula, error) {
	if expr.Satisfiable(f) {
		return nil, errors.New("cannot extract MUS from satisfiable formula")
	}
	clauses := expr.Conjuncts(f)
	mus := make([]expr.Formula, len(clauses))
	copy(mus, clauses)
	for i, n := 0, 0; i < len(clauses); i++ {
		candidate := make([]expr.Formula, 0, len(mus)-1)
		candidate = append(candidate, mus[:n]...)
		candidate = append(candidate, mus[n+1:]...)
		kept := expr.Satisfiable(expr.And(candidate...))
		if kept {
			n++
		} else {
			mus = candidate
		}
		if logger != nil && logger.Level >= logrus.DebugLevel {
			logger.WithFields(logrus.Fields{
				"clause": i + 1,
				"total":  len(clauses),
				"kept":   kept,
			}).Debug("mus deletion step")
		}
	}
	return mus, nil
}
