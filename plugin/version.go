package plugin

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Local is the RemoteIndex of versions that do not come from a remote catalog.
const Local = -1

// A SelectedVersion is the decision "is this version of this plugin part of the install set?".
// Its identity is the pair (Name, Version): Installed and RemoteIndex are annotations
// that only influence ordering and diagnostics.
type SelectedVersion struct {
	Name        string
	Version     *semver.Version
	Installed   bool // Version is already present locally
	RemoteIndex int  // Index of the catalog the version comes from, or Local
}

// NewSelectedVersion returns the local, non-installed selection of name at version v.
func NewSelectedVersion(name string, v *semver.Version) SelectedVersion {
	return SelectedVersion{Name: name, Version: v, RemoteIndex: Local}
}

// ParseSelectedVersion parses a "Name@Version" string.
func ParseSelectedVersion(s string) (SelectedVersion, error) {
	idx := strings.LastIndex(s, "@")
	if idx <= 0 || idx == len(s)-1 {
		return SelectedVersion{}, errors.Errorf("invalid selected version %q: expected Name@Version", s)
	}
	v, err := semver.NewVersion(s[idx+1:])
	if err != nil {
		return SelectedVersion{}, errors.Wrapf(err, "invalid version in %q", s)
	}
	return NewSelectedVersion(s[:idx], v), nil
}

// MustParseSelectedVersion is like ParseSelectedVersion but panics on invalid input.
// It is meant for tests and static initializations.
func MustParseSelectedVersion(s string) SelectedVersion {
	sv, err := ParseSelectedVersion(s)
	if err != nil {
		panic(err)
	}
	return sv
}

// Equal is true iff sv and other denote the same plugin version.
func (sv SelectedVersion) Equal(other SelectedVersion) bool {
	return sv.Name == other.Name && sv.Version.Equal(other.Version)
}

// Key returns a string that uniquely identifies the (name, version) pair.
// Two selections are Equal iff their keys are equal.
// Build metadata is not part of the key, as it does not take part in precedence.
func (sv SelectedVersion) Key() string {
	v := sv.Version
	key := fmt.Sprintf("%s@%d.%d.%d", sv.Name, v.Major(), v.Minor(), v.Patch())
	if pre := v.Prerelease(); pre != "" {
		key += "-" + pre
	}
	return key
}

func (sv SelectedVersion) String() string {
	return sv.Name + "@" + sv.Version.String()
}

// Compare defines a total order on selections: by name (case-insensitive first),
// then installed versions after non-installed ones, then version precedence,
// then remote index.
// Among versions of the same plugin, the maximum is thus the installed one, if any,
// or else the newest one.
func (sv SelectedVersion) Compare(other SelectedVersion) int {
	if c := strings.Compare(strings.ToLower(sv.Name), strings.ToLower(other.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(sv.Name, other.Name); c != 0 {
		return c
	}
	if sv.Installed != other.Installed {
		if sv.Installed {
			return 1
		}
		return -1
	}
	if c := sv.Version.Compare(other.Version); c != 0 {
		return c
	}
	switch {
	case sv.RemoteIndex < other.RemoteIndex:
		return -1
	case sv.RemoteIndex > other.RemoteIndex:
		return 1
	default:
		return 0
	}
}

// Less is a convenience for sort functions.
func (sv SelectedVersion) Less(other SelectedVersion) bool {
	return sv.Compare(other) < 0
}
