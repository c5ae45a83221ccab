package plugin

import "github.com/Masterminds/semver/v3"

// RootName is the name of the synthetic node representing an install request.
const RootName = "$Root"

// A Node is a version of a plugin as seen by the resolver: a name, a version
// and the dependencies that version declares.
// The install request and every version returned by a catalog are nodes.
type Node interface {
	PluginName() string
	PluginVersion() *semver.Version
	Requirements() []Dependency // In declaration order
	IsInstalled() bool
	Remote() int // Index of the originating catalog, or Local
}

// Selected returns the selection associated with n.
func Selected(n Node) SelectedVersion {
	return SelectedVersion{
		Name:        n.PluginName(),
		Version:     n.PluginVersion(),
		Installed:   n.IsInstalled(),
		RemoteIndex: n.Remote(),
	}
}

// A Release is a version of a plugin, as published in a catalog.
type Release struct {
	Name         string
	Version      *semver.Version
	Dependencies []Dependency
	Installed    bool
	RemoteIndex  int
}

// NewRelease returns a local, non-installed release.
// It panics if version is not a valid semantic version.
func NewRelease(name, version string, deps ...Dependency) *Release {
	return &Release{
		Name:         name,
		Version:      semver.MustParse(version),
		Dependencies: deps,
		RemoteIndex:  Local,
	}
}

func (r *Release) PluginName() string             { return r.Name }
func (r *Release) PluginVersion() *semver.Version { return r.Version }
func (r *Release) Requirements() []Dependency     { return r.Dependencies }
func (r *Release) IsInstalled() bool              { return r.Installed }
func (r *Release) Remote() int                    { return r.RemoteIndex }

func (r *Release) String() string {
	return Selected(r).String()
}

var rootVersion = semver.MustParse("1.0.0")

// Root is the synthetic node standing for the user's install request.
// It is always considered installed and local.
type Root struct {
	Dependencies []Dependency
}

// NewRoot returns the install request for the given dependencies.
func NewRoot(deps ...Dependency) *Root {
	return &Root{Dependencies: deps}
}

func (r *Root) PluginName() string             { return RootName }
func (r *Root) PluginVersion() *semver.Version { return rootVersion }
func (r *Root) Requirements() []Dependency     { return r.Dependencies }
func (r *Root) IsInstalled() bool              { return true }
func (r *Root) Remote() int                    { return Local }
