// Package catalog gathers the candidate versions of the plugins an install request depends on.
//
// A Source knows the published versions of plugins. Crawl walks the dependencies declared by
// those versions until every reachable plugin is either found or known to be missing, and
// records the result in a Manifest. Collect does the same on a local source and several remote
// ones, and merges what they know.
package catalog

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/crillab/plugdep/plugin"
)

// A Source knows the published versions of plugins.
type Source interface {
	// Versions returns all known versions of the plugin called name,
	// or an empty list if the source does not know about it.
	Versions(name string) ([]plugin.Node, error)
}

// Memory is a source keeping its releases in memory, indexed by plugin name.
type Memory map[string][]*plugin.Release

// NewMemory returns a source holding the given releases.
func NewMemory(releases ...*plugin.Release) Memory {
	m := make(Memory)
	m.Add(releases...)
	return m
}

// Add adds releases to m.
func (m Memory) Add(releases ...*plugin.Release) {
	for _, r := range releases {
		m[r.Name] = append(m[r.Name], r)
	}
}

// Versions implements Source.
func (m Memory) Versions(name string) ([]plugin.Node, error) {
	releases := m[name]
	res := make([]plugin.Node, len(releases))
	for i, r := range releases {
		res[i] = r
	}
	return res, nil
}

// A MissingDependenciesError is returned when some plugins could not be found in any source.
type MissingDependenciesError struct {
	Names []string // Sorted
}

func (e *MissingDependenciesError) Error() string {
	if len(e.Names) == 1 {
		return "missing dependency: " + e.Names[0]
	}
	return "missing dependencies: " + strings.Join(e.Names, ", ")
}

// A Manifest is what is known about the plugins reachable from an install request.
type Manifest struct {
	// Found associates each found plugin with its versions, newest first.
	Found map[string][]*plugin.Release
	// Unresolved lists the plugins that were required but could not be found, sorted.
	Unresolved []string
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Found: make(map[string][]*plugin.Release)}
}

// Merge adds the versions found in other to m.
// When both manifests know the same version of a plugin, m's is kept.
// Plugins unresolved in either manifest remain so only if none of them found it.
func (m *Manifest) Merge(other *Manifest) {
	for name, releases := range other.Found {
		for _, r := range releases {
			if !m.has(name, r) {
				m.Found[name] = append(m.Found[name], r)
			}
		}
		sortReleases(m.Found[name])
	}
	unresolved := make(map[string]struct{})
	for _, name := range append(m.Unresolved, other.Unresolved...) {
		if _, ok := m.Found[name]; !ok {
			unresolved[name] = struct{}{}
		}
	}
	m.Unresolved = m.Unresolved[:0]
	for name := range unresolved {
		m.Unresolved = append(m.Unresolved, name)
	}
	sort.Strings(m.Unresolved)
}

func (m *Manifest) has(name string, r *plugin.Release) bool {
	for _, r2 := range m.Found[name] {
		if r2.Version.Equal(r.Version) {
			return true
		}
	}
	return false
}

// MarkInstalled flags as installed the found versions that match the installed ones.
// installed associates plugin names with their installed version.
func (m *Manifest) MarkInstalled(installed map[string]*semver.Version) {
	for name, releases := range m.Found {
		v, ok := installed[name]
		if !ok {
			continue
		}
		for _, r := range releases {
			if r.Version.Equal(v) {
				r.Installed = true
			}
		}
	}
}

// SetRemoteIndex records that all found versions come from the remote catalog #idx.
func (m *Manifest) SetRemoteIndex(idx int) {
	for _, releases := range m.Found {
		for _, r := range releases {
			r.RemoteIndex = idx
		}
	}
}

// Candidates returns the found versions, as expected by the resolver.
// If some plugins are unresolved, it returns a *MissingDependenciesError.
func (m *Manifest) Candidates() (map[string][]plugin.Node, error) {
	if len(m.Unresolved) > 0 {
		names := make([]string, len(m.Unresolved))
		copy(names, m.Unresolved)
		return nil, &MissingDependenciesError{Names: names}
	}
	res := make(map[string][]plugin.Node, len(m.Found))
	for name, releases := range m.Found {
		nodes := make([]plugin.Node, len(releases))
		for i, r := range releases {
			nodes[i] = r
		}
		res[name] = nodes
	}
	return res, nil
}

// sortReleases sorts releases by descending version.
func sortReleases(releases []*plugin.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Version.GreaterThan(releases[j].Version)
	})
}

// release returns a copy of n that can be annotated without modifying its source.
func release(n plugin.Node) *plugin.Release {
	deps := make([]plugin.Dependency, len(n.Requirements()))
	copy(deps, n.Requirements())
	return &plugin.Release{
		Name:         n.PluginName(),
		Version:      n.PluginVersion(),
		Dependencies: deps,
		Installed:    n.IsInstalled(),
		RemoteIndex:  n.Remote(),
	}
}
