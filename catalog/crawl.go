package catalog

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/crillab/plugdep/plugin"
)

// Crawl returns the manifest of all plugins transitively required by deps, according to src.
// Plugins are looked up breadth first: a round looks up every plugin required by the versions
// found during the previous round. All versions of a found plugin are considered, whatever the
// ranges that led to it.
// Found versions are copies: annotating them does not modify src.
func Crawl(deps []plugin.Dependency, src Source) (*Manifest, error) {
	m := NewManifest()
	seen := make(map[string]struct{})
	var frontier []string
	require := func(deps []plugin.Dependency) {
		for _, dep := range deps {
			if _, ok := seen[dep.Name]; !ok {
				seen[dep.Name] = struct{}{}
				frontier = append(frontier, dep.Name)
			}
		}
	}
	require(deps)
	for len(frontier) > 0 {
		names := frontier
		frontier = nil
		sort.Strings(names)
		for _, name := range names {
			nodes, err := src.Versions(name)
			if err != nil {
				return nil, errors.Wrapf(err, "could not get versions of %s", name)
			}
			if len(nodes) == 0 {
				m.Unresolved = append(m.Unresolved, name)
				continue
			}
			releases := make([]*plugin.Release, len(nodes))
			for i, n := range nodes {
				releases[i] = release(n)
				require(n.Requirements())
			}
			sortReleases(releases)
			m.Found[name] = releases
		}
	}
	sort.Strings(m.Unresolved)
	return m, nil
}

// Collect crawls a local source, if not nil, and remote ones, and merges their manifests.
// Versions found in remote #i are annotated with the remote index i; when several sources
// know the same version, the local one is kept, then the one from the remote with the lowest
// index. Versions matching installed ones are marked as such.
// A plugin required by a version of one source may only be hosted by another one: plugins
// still unresolved after merging are looked up again in every source, until no new one shows up.
// Sources are crawled concurrently. The first error met cancels the whole collection.
func Collect(ctx context.Context, deps []plugin.Dependency, installed map[string]*semver.Version,
	local Source, remotes ...Source) (*Manifest, error) {
	sources := remotes
	if local != nil {
		sources = append([]Source{local}, remotes...)
	}
	res := NewManifest()
	tried := make(map[string]struct{})
	for len(deps) > 0 {
		round, err := collect(ctx, deps, sources, local != nil)
		if err != nil {
			return nil, errors.Wrap(err, "could not collect candidate versions")
		}
		for _, dep := range deps {
			tried[dep.Name] = struct{}{}
		}
		res.Merge(round)
		deps = nil
		for _, name := range res.Unresolved {
			if _, ok := tried[name]; !ok {
				deps = append(deps, plugin.Dependency{Name: name, Kind: plugin.Provided, Range: plugin.Any})
			}
		}
	}
	res.MarkInstalled(installed)
	return res, nil
}

// collect crawls deps in all sources at once, and merges their manifests in order.
// If hasLocal, sources[0] is the local source, and the others are the remotes.
func collect(ctx context.Context, deps []plugin.Dependency, sources []Source, hasLocal bool) (*Manifest, error) {
	manifests := make([]*Manifest, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := Crawl(deps, src)
			if err != nil {
				return err
			}
			manifests[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := NewManifest()
	for i, m := range manifests {
		idx := i
		if hasLocal {
			idx--
		}
		if idx >= 0 {
			m.SetRemoteIndex(idx)
		}
		res.Merge(m)
	}
	return res, nil
}

// WithInstalled returns deps followed by a requirement on every installed plugin deps do not
// mention, at least in its installed version. Resolving them altogether keeps installed plugins
// consistent with newly installed ones.
func WithInstalled(deps []plugin.Dependency, installed map[string]*semver.Version) ([]plugin.Dependency, error) {
	res := make([]plugin.Dependency, len(deps))
	copy(res, deps)
	requested := make(map[string]struct{})
	for _, dep := range deps {
		requested[dep.Name] = struct{}{}
	}
	names := make([]string, 0, len(installed))
	for name := range installed {
		if _, ok := requested[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		rng, err := plugin.ParseRange(">=" + installed[name].String())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid installed version of %s", name)
		}
		res = append(res, plugin.Dependency{Name: name, Kind: plugin.Provided, Range: rng})
	}
	return res, nil
}
