// Package plugin describes the data the resolver works on: plugin versions,
// the dependencies they declare and the version ranges those dependencies accept.
//
// Versions and ranges follow semantic versioning. Range containment is delegated
// to github.com/Masterminds/semver/v3, so any constraint it understands can be used:
//
//	=2.0.0
//	>=3.0.0, <=4.0.0
//	^1.2 || ~2.0
//
// A resolution problem is made of a root Node, typically a Root holding the user's
// install request, and of every known Release of every plugin reachable from it.
// Each distinct (name, version) pair is identified by a SelectedVersion.
package plugin
