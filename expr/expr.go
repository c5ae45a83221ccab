package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/plugdep/plugin"
)

// A Formula is any kind of boolean formula over plugin versions.
// The set of formula kinds is closed: only this package can define new ones.
type Formula interface {
	// Free returns the variables that were not replaced yet, without duplicates, in ascending order.
	Free() []plugin.SelectedVersion
	// Replace returns a new formula where v is bound to val.
	Replace(v plugin.SelectedVersion, val bool) Formula
	// Eval returns the value of a formula without free variables.
	// Live implications are recorded in tr, if it is not nil.
	// It panics with an *UnboundError if a variable remains.
	Eval(tr *Trace) bool
	String() string
	collect(vs *varSet)
}

// An EvaluationResult records the check of a dependency during an evaluation.
type EvaluationResult struct {
	Satisfied  bool              // Was the dependency fulfilled?
	RequiredBy string            // Name of the plugin declaring the dependency
	Dependency plugin.Dependency // The dependency that was checked
	Unmatched  bool              // True iff no known version was within the dependency's range
}

// A Trace accumulates the dependencies checked during an evaluation, in evaluation order.
type Trace []EvaluationResult

func (tr *Trace) add(res EvaluationResult) {
	if tr != nil {
		*tr = append(*tr, res)
	}
}

// An UnboundError is the value of the panic raised when a formula with free variables is evaluated.
// It is the sign of a programming error, never of an unsatisfiable problem.
type UnboundError struct {
	Var plugin.SelectedVersion
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("variable %s was not bound before evaluation", e.Var)
}

// varSet collects variables without duplicates.
type varSet struct {
	seen map[string]struct{}
	vars []plugin.SelectedVersion
}

func (vs *varSet) add(v plugin.SelectedVersion) {
	key := v.Key()
	if _, ok := vs.seen[key]; ok {
		return
	}
	vs.seen[key] = struct{}{}
	vs.vars = append(vs.vars, v)
}

func free(f Formula) []plugin.SelectedVersion {
	vs := varSet{seen: make(map[string]struct{})}
	f.collect(&vs)
	sort.Slice(vs.vars, func(i, j int) bool { return vs.vars[i].Less(vs.vars[j]) })
	return vs.vars
}

// The "true" constant.
type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) Free() []plugin.SelectedVersion              { return nil }
func (t trueConst) Replace(plugin.SelectedVersion, bool) Formula { return t }
func (t trueConst) Eval(*Trace) bool                            { return true }
func (t trueConst) String() string                              { return "⊤" }
func (t trueConst) collect(*varSet)                             {}

// The "false" constant.
type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) Free() []plugin.SelectedVersion              { return nil }
func (f falseConst) Replace(plugin.SelectedVersion, bool) Formula { return f }
func (f falseConst) Eval(*Trace) bool                            { return false }
func (f falseConst) String() string                              { return "⊥" }
func (f falseConst) collect(*varSet)                             {}

// Const returns True or False.
func Const(val bool) Formula {
	if val {
		return True
	}
	return False
}

// Var generates a variable standing for the selection of sv.
func Var(sv plugin.SelectedVersion) Formula {
	return variable{sv}
}

type variable struct {
	sv plugin.SelectedVersion
}

func (v variable) Free() []plugin.SelectedVersion {
	return []plugin.SelectedVersion{v.sv}
}

// Replace binds v if it is sv.
// Versions of a plugin are mutually exclusive: when another version of the same plugin
// is bound to true, v is bound to false.
func (v variable) Replace(sv plugin.SelectedVersion, val bool) Formula {
	if v.sv.Equal(sv) {
		return Const(val)
	}
	if val && v.sv.Name == sv.Name {
		return False
	}
	return v
}

func (v variable) Eval(*Trace) bool {
	panic(&UnboundError{Var: v.sv})
}

func (v variable) String() string {
	return v.sv.String()
}

func (v variable) collect(vs *varSet) {
	vs.add(v.sv)
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula {
	return not{f}
}

type not [1]Formula

func (n not) Free() []plugin.SelectedVersion { return free(n) }

func (n not) Replace(sv plugin.SelectedVersion, val bool) Formula {
	return not{n[0].Replace(sv, val)}
}

func (n not) Eval(tr *Trace) bool {
	return !n[0].Eval(tr)
}

func (n not) String() string {
	return "not(" + n[0].String() + ")"
}

func (n not) collect(vs *varSet) {
	n[0].collect(vs)
}

// And generates a conjunction of subformulas.
// Subformulas are evaluated in order, and evaluation stops at the first false one.
// The empty conjunction is true.
func And(subs ...Formula) Formula {
	return and(subs)
}

type and []Formula

// Conjuncts returns the direct subformulas of f if it is a conjunction, or f itself otherwise.
func Conjuncts(f Formula) []Formula {
	if a, ok := f.(and); ok {
		return a
	}
	return []Formula{f}
}

func (a and) Free() []plugin.SelectedVersion { return free(a) }

func (a and) Replace(sv plugin.SelectedVersion, val bool) Formula {
	res := make(and, len(a))
	for i, sub := range a {
		res[i] = sub.Replace(sv, val)
	}
	return res
}

func (a and) Eval(tr *Trace) bool {
	for _, sub := range a {
		if !sub.Eval(tr) {
			return false
		}
	}
	return true
}

func (a and) String() string {
	return "and(" + join(a) + ")"
}

func (a and) collect(vs *varSet) {
	for _, sub := range a {
		sub.collect(vs)
	}
}

// Or generates a disjunction of subformulas.
// Subformulas are evaluated in order, and evaluation stops at the first true one.
// The empty disjunction is false.
func Or(subs ...Formula) Formula {
	return or(subs)
}

type or []Formula

func (o or) Free() []plugin.SelectedVersion { return free(o) }

func (o or) Replace(sv plugin.SelectedVersion, val bool) Formula {
	res := make(or, len(o))
	for i, sub := range o {
		res[i] = sub.Replace(sv, val)
	}
	return res
}

func (o or) Eval(tr *Trace) bool {
	for _, sub := range o {
		if sub.Eval(tr) {
			return true
		}
	}
	return false
}

func (o or) String() string {
	return "or(" + join(o) + ")"
}

func (o or) collect(vs *varSet) {
	for _, sub := range o {
		sub.collect(vs)
	}
}

// Implies indicates p implies q, because the plugin requiredBy declares dep.
// If q is False, the dependency is considered unmatched: no known version can fulfill it.
func Implies(p, q Formula, requiredBy string, dep plugin.Dependency) Formula {
	_, unmatched := q.(falseConst)
	return implies{p: p, q: q, requiredBy: requiredBy, dep: dep, unmatched: unmatched}
}

type implies struct {
	p, q       Formula
	requiredBy string
	dep        plugin.Dependency
	unmatched  bool // q was False when the implication was built
}

func (i implies) Free() []plugin.SelectedVersion { return free(i) }

func (i implies) Replace(sv plugin.SelectedVersion, val bool) Formula {
	i.p = i.p.Replace(sv, val)
	i.q = i.q.Replace(sv, val)
	return i
}

func (i implies) Eval(tr *Trace) bool {
	if !i.p.Eval(tr) {
		return true
	}
	res := i.q.Eval(tr)
	tr.add(EvaluationResult{
		Satisfied:  res,
		RequiredBy: i.requiredBy,
		Dependency: i.dep,
		Unmatched:  i.unmatched,
	})
	return res
}

func (i implies) String() string {
	return "implies(" + i.p.String() + ", " + i.q.String() + ")"
}

func (i implies) collect(vs *varSet) {
	i.p.collect(vs)
	i.q.collect(vs)
}

func join(fs []Formula) string {
	strs := make([]string, len(fs))
	for i, f := range fs {
		strs[i] = f.String()
	}
	return strings.Join(strs, ", ")
}
