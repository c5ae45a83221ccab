package catalog

import (
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/crillab/plugdep/plugin"
)

// The YAML layout of catalogs, requests and lists of installed plugins.
type (
	catalogFile struct {
		Plugins []releaseEntry `yaml:"plugins"`
	}

	releaseEntry struct {
		Name         string            `yaml:"name"`
		Version      string            `yaml:"version"`
		Dependencies []dependencyEntry `yaml:"dependencies"`
	}

	dependencyEntry struct {
		Name    string `yaml:"name"`
		Kind    string `yaml:"kind"`
		Version string `yaml:"version"`
	}

	requestFile struct {
		Dependencies []dependencyEntry `yaml:"dependencies"`
	}

	installedFile struct {
		Installed map[string]string `yaml:"installed"`
	}
)

// Decode reads a catalog, such as:
//
//	plugins:
//	  - name: Sql
//	    version: 2.0.0
//	    dependencies:
//	      - name: StdLib
//	        version: ">=2.0.0, <=4.0.0"
//	      - name: Threads
//	        kind: engine
//	        version: "=2.0.0"
//
// The kind of a dependency defaults to "provided", and its version to any version.
func Decode(r io.Reader) (Memory, error) {
	var f catalogFile
	if err := decode(r, &f); err != nil {
		return nil, errors.Wrap(err, "could not parse catalog")
	}
	m := make(Memory)
	for i, entry := range f.Plugins {
		rel, err := entry.release()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid plugin #%d", i+1)
		}
		m.Add(rel)
	}
	return m, nil
}

// LoadFile reads a catalog from the file at path.
func LoadFile(path string) (Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open catalog")
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return m, nil
}

// LoadRequest reads an install request from the file at path, such as:
//
//	dependencies:
//	  - name: App
//	    version: "=1.0.0"
func LoadRequest(path string) (*plugin.Root, error) {
	var f requestFile
	if err := decodeFile(path, &f); err != nil {
		return nil, errors.Wrap(err, "could not read install request")
	}
	deps, err := dependencies(f.Dependencies)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid install request %s", path)
	}
	return plugin.NewRoot(deps...), nil
}

// LoadInstalled reads the list of installed plugins from the file at path, such as:
//
//	installed:
//	  Http: 3.0.0
//	  StdLib: 4.0.0
func LoadInstalled(path string) (map[string]*semver.Version, error) {
	var f installedFile
	if err := decodeFile(path, &f); err != nil {
		return nil, errors.Wrap(err, "could not read installed plugins")
	}
	res := make(map[string]*semver.Version, len(f.Installed))
	for name, version := range f.Installed {
		v, err := semver.NewVersion(version)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid installed version of %s in %s", name, path)
		}
		res[name] = v
	}
	return res, nil
}

func (e releaseEntry) release() (*plugin.Release, error) {
	if e.Name == "" {
		return nil, errors.New("plugin has no name")
	}
	v, err := semver.NewVersion(e.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %q of %s", e.Version, e.Name)
	}
	deps, err := dependencies(e.Dependencies)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s@%s", e.Name, e.Version)
	}
	return &plugin.Release{Name: e.Name, Version: v, Dependencies: deps, RemoteIndex: plugin.Local}, nil
}

func dependencies(entries []dependencyEntry) ([]plugin.Dependency, error) {
	deps := make([]plugin.Dependency, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, errors.Errorf("dependency #%d has no name", i+1)
		}
		kind, err := plugin.ParseKind(e.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency on %s", e.Name)
		}
		rng, err := plugin.ParseRange(e.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency on %s", e.Name)
		}
		deps[i] = plugin.Dependency{Name: e.Name, Kind: kind, Range: rng}
	}
	return deps, nil
}

func decode(r io.Reader, v interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := decode(f, v); err != nil {
		return errors.Wrapf(err, "in %s", path)
	}
	return nil
}
