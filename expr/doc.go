// Package expr offers a small boolean formula algebra whose variables are plugin versions.
//
// A formula is built from constants, variables, negations, conjunctions, disjunctions
// and implications. Implications carry provenance: the name of the requiring plugin and
// the dependency they encode. Provenance does not change their meaning, which is the usual
// material implication, but every implication whose antecedent holds when a formula is
// evaluated appends an EvaluationResult to a Trace. That trace is what conflict reports are
// made of.
//
// For example, "App 1.0.0 requires Sql =2.0.0, and at most one version of Sql can be installed"
// reads:
//
//	app := plugin.MustParseSelectedVersion("App@1.0.0")
//	sql1 := plugin.MustParseSelectedVersion("Sql@1.0.0")
//	sql2 := plugin.MustParseSelectedVersion("Sql@2.0.0")
//	f := And(
//		Var(app),
//		Implies(Var(app), Or(Var(sql2)), "App", plugin.Requires("Sql", "=2.0.0")),
//		Not(And(Var(sql1), Var(sql2))),
//	)
//
// Formulas are immutable. Variables are bound one at a time with Replace, which returns a new
// formula. Binding a variable to true also binds every other version of the same plugin to false.
// Once Free returns no variable, the formula can be evaluated with Eval.
//
// Formulas can also be handed to the gophersat CDCL solver, either to check whether they are
// satisfiable (Satisfiable) or to be written as a DIMACS CNF file (Dimacs).
package expr
