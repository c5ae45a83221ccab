package resolve

import (
	"sort"

	"github.com/crillab/plugdep/expr"
	"github.com/crillab/plugdep/plugin"
)

// Build returns the formula stating which plugin versions can be selected together.
// It is the conjunction of, in this order:
//
//   - the selection of root,
//   - one implication per dependency of root and of every visited candidate,
//     from the requiring version to the disjunction of the candidates within the range,
//   - for each plugin with several versions in the formula, the pairwise exclusion of its versions.
//
// Candidates must hold, for each plugin name reachable from root, all its known versions.
// A dependency whose range matches no candidate, or whose name is unknown,
// implies False: it surfaces as a conflict once its requirer is selected.
// Plugins are visited from the most referenced to the least referenced one,
// each plugin's versions from the newest to the oldest.
func Build(root plugin.Node, candidates map[string][]plugin.Node) expr.Formula {
	rootVar := expr.Var(plugin.Selected(root))
	clauses := []expr.Formula{rootVar}
	for _, node := range visitOrder(root, candidates) {
		clauses = append(clauses, implications(node, candidates)...)
	}
	clauses = append(clauses, exclusions(expr.And(clauses...).Free())...)
	return expr.And(clauses...)
}

// implications returns one implication per dependency of node, in declaration order.
func implications(node plugin.Node, candidates map[string][]plugin.Node) []expr.Formula {
	sv := plugin.Selected(node)
	deps := node.Requirements()
	res := make([]expr.Formula, len(deps))
	for i, dep := range deps {
		var matching []expr.Formula
		for _, c := range newestFirst(candidates[dep.Name]) {
			if dep.Range.Contains(c.PluginVersion()) {
				matching = append(matching, expr.Var(plugin.Selected(c)))
			}
		}
		q := expr.False
		if len(matching) > 0 {
			q = expr.Or(matching...)
		}
		res[i] = expr.Implies(expr.Var(sv), q, sv.Name, dep)
	}
	return res
}

// exclusions states that at most one version of each plugin among vars can be selected.
// vars must be sorted, as returned by Free.
func exclusions(vars []plugin.SelectedVersion) []expr.Formula {
	byName := make(map[string][]plugin.SelectedVersion)
	var names []string
	for _, v := range vars {
		if _, ok := byName[v.Name]; !ok {
			names = append(names, v.Name)
		}
		byName[v.Name] = append(byName[v.Name], v)
	}
	var res []expr.Formula
	for _, name := range names {
		versions := byName[name]
		for i := 0; i < len(versions)-1; i++ {
			for j := i + 1; j < len(versions); j++ {
				res = append(res, expr.Not(expr.And(expr.Var(versions[i]), expr.Var(versions[j]))))
			}
		}
	}
	return res
}

// visitOrder returns root, then the candidates of every referenced plugin.
// Plugins are sorted by descending number of references, ties being broken by order of
// first appearance, and candidates of a plugin by descending version.
// References are counted over the dependencies of root and of all candidates, candidates
// being considered by plugin name, in lexical order.
// Plugins that are not referenced by anyone are not visited.
func visitOrder(root plugin.Node, candidates map[string][]plugin.Node) []plugin.Node {
	counts := make(map[string]int)
	var names []string
	count := func(deps []plugin.Dependency) {
		for _, dep := range deps {
			if counts[dep.Name] == 0 {
				names = append(names, dep.Name)
			}
			counts[dep.Name]++
		}
	}
	count(root.Requirements())
	for _, name := range sortedNames(candidates) {
		for _, c := range newestFirst(candidates[name]) {
			count(c.Requirements())
		}
	}
	sort.SliceStable(names, func(i, j int) bool { return counts[names[i]] > counts[names[j]] })
	nodes := []plugin.Node{root}
	for _, name := range names {
		nodes = append(nodes, newestFirst(candidates[name])...)
	}
	return nodes
}

func sortedNames(candidates map[string][]plugin.Node) []string {
	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newestFirst returns a copy of nodes sorted by descending version.
func newestFirst(nodes []plugin.Node) []plugin.Node {
	res := make([]plugin.Node, len(nodes))
	copy(res, nodes)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].PluginVersion().GreaterThan(res[j].PluginVersion())
	})
	return res
}
