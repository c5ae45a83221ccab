package expr

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/plugdep/plugin"
)

func sv(s string) plugin.SelectedVersion {
	return plugin.MustParseSelectedVersion(s)
}

func keys(vs []plugin.SelectedVersion) []string {
	res := make([]string, len(vs))
	for i, v := range vs {
		res[i] = v.String()
	}
	return res
}

func TestFree(t *testing.T) {
	f := And(
		Var(sv("Sql@2.0.0")),
		Or(Var(sv("App@1.0.0")), Not(Var(sv("Sql@2.0.0")))),
		Implies(Var(sv("App@1.0.0")), Or(Var(sv("Sql@1.0.0"))), "App", plugin.Requires("Sql", "=1.0.0")),
		True,
	)
	assert.Equal(t, []string{"App@1.0.0", "Sql@1.0.0", "Sql@2.0.0"}, keys(f.Free()))
	assert.Empty(t, True.Free())
	assert.Empty(t, And().Free())
}

func TestReplace(t *testing.T) {
	sql1, sql2, app := sv("Sql@1.0.0"), sv("Sql@2.0.0"), sv("App@1.0.0")
	f := And(Var(sql1), Var(sql2), Var(app))

	g := f.Replace(sql2, true)
	assert.Equal(t, "and(⊥, ⊤, App@1.0.0)", g.String(), "other versions of Sql must be bound to false")
	assert.Equal(t, "and(Sql@1.0.0, Sql@2.0.0, App@1.0.0)", f.String(), "original formula must be left untouched")

	g = f.Replace(sql2, false)
	assert.Equal(t, "and(Sql@1.0.0, ⊥, App@1.0.0)", g.String(), "binding to false must not affect other versions")
	assert.Equal(t, []string{"App@1.0.0", "Sql@1.0.0"}, keys(g.Free()))
}

func TestEvalTrace(t *testing.T) {
	depSql := plugin.Requires("Sql", "=2.0.0")
	depCD := plugin.Requires("ConflictingDependency", "=1.0.0")
	depHttp := plugin.Requires("Http", ">=9.0.0")
	f := And(
		Implies(False, False, "Skipped", depSql),
		Implies(True, Or(False, True), "App", depSql),
		Implies(True, Or(False), "App", depCD),
		Implies(True, False, "App", depHttp),
	)
	var tr Trace
	assert.False(t, f.Eval(&tr))
	require.Len(t, tr, 2, "vacuous implications and those after the first failure must not be recorded")
	assert.Equal(t, EvaluationResult{Satisfied: true, RequiredBy: "App", Dependency: depSql}, tr[0])
	assert.Equal(t, EvaluationResult{Satisfied: false, RequiredBy: "App", Dependency: depCD}, tr[1])
	assert.False(t, tr[1].Unmatched, "consequent was not built as False")

	tr = nil
	assert.False(t, Implies(True, False, "App", depHttp).Eval(&tr))
	require.Len(t, tr, 1)
	assert.True(t, tr[0].Unmatched)

	assert.True(t, Or(True, Implies(True, False, "App", depHttp)).Eval(nil), "a nil trace must be accepted")
}

func TestEvalUnbound(t *testing.T) {
	f := And(True, Not(Var(sv("Sql@2.0.0"))))
	defer func() {
		r := recover()
		require.NotNil(t, r, "evaluating a free variable must panic")
		err, ok := r.(*UnboundError)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, "Sql@2.0.0", err.Var.String())
		assert.Contains(t, err.Error(), "Sql@2.0.0")
	}()
	f.Eval(nil)
}

func TestEmptyConnectors(t *testing.T) {
	assert.True(t, And().Eval(nil))
	assert.False(t, Or().Eval(nil))
	assert.True(t, Implies(False, Or(), "App", plugin.Requires("Sql", "*")).Eval(nil))
}

func TestString(t *testing.T) {
	f := And(Or(Var(sv("A@1.0.0")), Not(Var(sv("B@1.0.0")))), Not(Var(sv("C@1.0.0"))))
	const expected = "and(or(A@1.0.0, not(B@1.0.0)), not(C@1.0.0))"
	if f.String() != expected {
		t.Errorf("string representation of formula not as expected: wanted %q, got %q", expected, f.String())
	}
	g := Implies(Var(sv("A@1.0.0")), Or(), "A", plugin.Requires("B", "=1.0.0"))
	assert.Equal(t, "implies(A@1.0.0, or())", g.String())
}

// bruteForce checks satisfiability by trying every binding.
// Variables of f must all belong to different plugins.
func bruteForce(f Formula) bool {
	vars := f.Free()
	for mask := 0; mask < 1<<len(vars); mask++ {
		g := f
		for i, v := range vars {
			g = g.Replace(v, mask&(1<<i) != 0)
		}
		if g.Eval(nil) {
			return true
		}
	}
	return false
}

func TestSatisfiable(t *testing.T) {
	tests := []string{
		`"A@1.0.0" & "B@1.0.0"`,
		`"A@1.0.0" & ^"A@1.0.0"`,
		`("A@1.0.0" | "B@1.0.0") & ^"A@1.0.0" & ^"B@1.0.0"`,
		`("A@1.0.0" -> "B@1.0.0") & "A@1.0.0" & ("B@1.0.0" -> "C@1.0.0") & ^"C@1.0.0"`,
		`("A@1.0.0" = "B@1.0.0") & ("B@1.0.0" = ^"C@1.0.0") & "C@1.0.0"`,
		`true & ("A@1.0.0" | false)`,
		`false | ^true`,
		`true`,
		`^("A@1.0.0" & "B@1.0.0") -> ("C@1.0.0" | ^"D@1.0.0")`,
	}
	for _, test := range tests {
		f, err := Parse(strings.NewReader(test))
		require.NoError(t, err, "formula %s", test)
		assert.Equal(t, bruteForce(f), Satisfiable(f), "formula %s", test)
	}
}

func TestSatisfiableWithProvenance(t *testing.T) {
	app, sql := sv("App@1.0.0"), sv("Sql@2.0.0")
	f := And(Var(app), Implies(Var(app), Or(Var(sql)), "App", plugin.Requires("Sql", "=2.0.0")))
	assert.True(t, Satisfiable(f))
	f = And(Var(app), Implies(Var(app), Or(), "App", plugin.Requires("Sql", ">=9.0.0")))
	assert.False(t, Satisfiable(f))
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(`"App@1.0.0" & ("Sql@2.0.0" | ^"Sql@1.0.0")`))
	require.NoError(t, err)
	assert.Equal(t, "and(App@1.0.0, or(Sql@2.0.0, not(Sql@1.0.0)))", f.String())

	f, err = Parse(strings.NewReader(`"A@1.0.0" -> "B@1.0.0"`))
	require.NoError(t, err)
	assert.Equal(t, "or(not(A@1.0.0), B@1.0.0)", f.String())

	invalid := []string{
		``,
		`A`,
		`"A@1.0.0" &`,
		`("A@1.0.0"`,
		`"A@1.0.0" "B@1.0.0"`,
		`"A@1.0.0" -< "B@1.0.0"`,
		`& "A@1.0.0"`,
		`"A"`,
		`)`,
	}
	for _, test := range invalid {
		_, err := Parse(strings.NewReader(test))
		assert.Error(t, err, "formula %q should not parse", test)
	}
}

func ExampleImplies() {
	app, sql1, sql2 := sv("App@1.0.0"), sv("Sql@1.0.0"), sv("Sql@2.0.0")
	f := And(
		Var(app),
		Implies(Var(app), Or(Var(sql2)), "App", plugin.Requires("Sql", "=2.0.0")),
		Not(And(Var(sql1), Var(sql2))),
	)
	f = f.Replace(app, true).Replace(sql1, true).Replace(sql2, false)
	var tr Trace
	fmt.Println(f.Eval(&tr))
	for _, res := range tr {
		fmt.Printf("%s requires %s: %t\n", res.RequiredBy, res.Dependency, res.Satisfied)
	}
	// Output:
	// false
	// App requires Sql =2.0.0: false
}

func ExampleDimacs() {
	f := And(Var(sv("A@1.0.0")), Not(Var(sv("B@1.0.0"))))
	if err := Dimacs(f, os.Stdout); err != nil {
		fmt.Printf("Could not generate DIMACS file: %v", err)
	}
	// Output:
	// p cnf 2 2
	// c A@1.0.0=1
	// c B@1.0.0=2
	// 1 0
	// -2 0
}
