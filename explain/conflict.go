// Package explain provides facilities to report and understand failed resolutions.
//
// Conflicts are extracted from the trace of the evaluation that failed; Certify and Core
// double-check an unsatisfiable formula with gophersat and shrink it to a minimal subset
// of clauses that still cannot hold together.
package explain

import (
	"strings"

	"github.com/crillab/plugdep/expr"
	"github.com/crillab/plugdep/plugin"
)

// A PluginRequirement is one of the requirements taking part in a conflict.
type PluginRequirement struct {
	RequiredBy      string       // Name of the requiring plugin
	RequiredVersion plugin.Range // Range it requires
}

func (r PluginRequirement) String() string {
	return r.RequiredBy + " ⇒ " + r.RequiredVersion.String()
}

// A Conflict lists the requirements on a plugin that no single version could fulfill.
type Conflict struct {
	PluginName string
	Versions   []PluginRequirement
}

// String returns a single-line description of the conflict,
// such as "Foo required by: App ⇒ =1.0.0; Sql ⇒ =2.0.0".
func (c Conflict) String() string {
	strs := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		strs[i] = v.String()
	}
	return c.PluginName + " required by: " + strings.Join(strs, "; ")
}

// Extract builds the conflicts revealed by the trace of a failed evaluation.
// Results are grouped by required plugin, in order of first appearance.
// A group is a conflict when one of its dependencies was not fulfilled and either
// several plugins required it, or no known version matched the unfulfilled range.
// Groups where everything was fulfilled, or where a lone requirer failed for reasons found
// elsewhere, are not conflicts.
func Extract(tr expr.Trace) []Conflict {
	var names []string
	groups := make(map[string][]expr.EvaluationResult)
	for _, res := range tr {
		name := res.Dependency.Name
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], res)
	}
	var conflicts []Conflict
	for _, name := range names {
		if c, ok := conflict(name, groups[name]); ok {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func conflict(name string, results []expr.EvaluationResult) (Conflict, bool) {
	failed, unmatched := false, false
	requirers := make(map[string]struct{})
	for _, res := range results {
		requirers[res.RequiredBy] = struct{}{}
		if !res.Satisfied {
			failed = true
			unmatched = unmatched || res.Unmatched
		}
	}
	if !failed || (len(requirers) < 2 && !unmatched) {
		return Conflict{}, false
	}
	c := Conflict{PluginName: name}
	seen := make(map[string]struct{})
	for _, res := range results {
		req := PluginRequirement{RequiredBy: res.RequiredBy, RequiredVersion: res.Dependency.Range}
		if _, ok := seen[req.String()]; ok {
			continue
		}
		seen[req.String()] = struct{}{}
		c.Versions = append(c.Versions, req)
	}
	return c, true
}

// Unique returns conflicts without repetitions, keeping the first occurrence of each one.
// Two conflicts are the same if they have the same description.
func Unique(conflicts []Conflict) []Conflict {
	var res []Conflict
	seen := make(map[string]struct{})
	for _, c := range conflicts {
		key := c.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, c)
	}
	return res
}
