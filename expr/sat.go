package expr

import (
	"io"

	"github.com/crillab/gophersat/bf"
	"github.com/pkg/errors"
)

// Satisfiable is true iff some binding of the free variables of f makes it true.
// It does not use the resolver's search but gophersat's CDCL solver, and is thus
// an independent way of checking the resolver's answers.
// Mutual exclusion between versions of a plugin is only enforced if f states it explicitly.
func Satisfiable(f Formula) bool {
	switch g := fold(f).(type) {
	case trueConst:
		return true
	case falseConst:
		return false
	default:
		return bf.Solve(toBF(g)) != nil
	}
}

// Dimacs writes the DIMACS CNF version of f on w, so that it can be fed to any SAT solver.
// Variables are named after the key of their plugin version in comment lines, e.g "c Sql@2.0.0=3".
func Dimacs(f Formula, w io.Writer) error {
	if err := bf.Dimacs(toBF(fold(f)), w); err != nil {
		return errors.Wrap(err, "could not write formula as DIMACS")
	}
	return nil
}

// fold propagates constants upwards, so that the only constant left, if any, is the formula itself.
// Provenance of implications is dropped.
func fold(f Formula) Formula {
	switch f := f.(type) {
	case trueConst, falseConst, variable:
		return f
	case not:
		switch sub := fold(f[0]).(type) {
		case trueConst:
			return False
		case falseConst:
			return True
		default:
			return not{sub}
		}
	case and:
		var res and
		for _, sub := range f {
			switch sub := fold(sub).(type) {
			case trueConst: // True is ignored
			case falseConst:
				return False
			default:
				res = append(res, sub)
			}
		}
		switch len(res) {
		case 0:
			return True
		case 1:
			return res[0]
		default:
			return res
		}
	case or:
		var res or
		for _, sub := range f {
			switch sub := fold(sub).(type) {
			case falseConst: // False is ignored
			case trueConst:
				return True
			default:
				res = append(res, sub)
			}
		}
		switch len(res) {
		case 0:
			return False
		case 1:
			return res[0]
		default:
			return res
		}
	case implies:
		p, q := fold(f.p), fold(f.q)
		_, pTrue := p.(trueConst)
		_, pFalse := p.(falseConst)
		_, qTrue := q.(trueConst)
		_, qFalse := q.(falseConst)
		switch {
		case pFalse || qTrue:
			return True
		case pTrue:
			return q
		case qFalse:
			return not{p}
		default:
			return or{not{p}, q}
		}
	default:
		panic("invalid formula type")
	}
}

// toBF translates f into gophersat's representation.
func toBF(f Formula) bf.Formula {
	switch f := f.(type) {
	case trueConst:
		return bf.True
	case falseConst:
		return bf.False
	case variable:
		return bf.Var(f.sv.Key())
	case not:
		return bf.Not(toBF(f[0]))
	case and:
		return bf.And(toBFs(f)...)
	case or:
		return bf.Or(toBFs(f)...)
	case implies:
		return bf.Implies(toBF(f.p), toBF(f.q))
	default:
		panic("invalid formula type")
	}
}

func toBFs(fs []Formula) []bf.Formula {
	res := make([]bf.Formula, len(fs))
	for i, f := range fs {
		res[i] = toBF(f)
	}
	return res
}
