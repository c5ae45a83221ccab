package plugin

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// A Range is a set of acceptable versions, described by a semver constraint.
// The zero Range accepts every version.
type Range struct {
	text string
	c    *semver.Constraints
}

// Any is the range accepting every version.
var Any = Range{}

// ParseRange parses a semver constraint such as "=2.0.0" or ">=3.0.0, <=4.0.0".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Any, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Range{}, errors.Wrapf(err, "invalid version range %q", s)
	}
	return Range{text: s, c: c}, nil
}

// MustParseRange is like ParseRange but panics on invalid input.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains is true iff v belongs to the range.
func (r Range) Contains(v *semver.Version) bool {
	if r.c == nil {
		return true
	}
	return r.c.Check(v)
}

func (r Range) String() string {
	if r.c == nil {
		return "*"
	}
	return r.text
}

// Kind is the kind of a dependency.
// It is carried along for callers; the resolver treats all kinds alike.
type Kind byte

const (
	// Provided dependencies are plugins distributed through a catalog.
	Provided = Kind(iota)
	// Engine dependencies are plugins shipped with the engine.
	Engine
	// External dependencies are plugins installed by other means.
	External
)

// ParseKind parses a dependency kind. The empty string is Provided.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "provided":
		return Provided, nil
	case "engine":
		return Engine, nil
	case "external":
		return External, nil
	default:
		return Provided, errors.Errorf("invalid dependency kind %q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case Provided:
		return "provided"
	case Engine:
		return "engine"
	case External:
		return "external"
	default:
		panic("invalid dependency kind")
	}
}

// A Dependency states that, whichever version declares it is selected,
// some version of the plugin Name within Range must be selected, too.
type Dependency struct {
	Name  string
	Kind  Kind
	Range Range
}

// Requires returns a provided dependency on name within the given range.
// It panics if rng is not a valid range.
func Requires(name, rng string) Dependency {
	return Dependency{Name: name, Kind: Provided, Range: MustParseRange(rng)}
}

func (d Dependency) String() string {
	return d.Name + " " + d.Range.String()
}
