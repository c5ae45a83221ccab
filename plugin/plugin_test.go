package plugin

import (
	"fmt"
	"sort"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectedVersion(t *testing.T) {
	sv, err := ParseSelectedVersion("Sql@2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Sql", sv.Name)
	assert.Equal(t, "2.0.0", sv.Version.String())
	assert.Equal(t, Local, sv.RemoteIndex)
	assert.False(t, sv.Installed)

	for _, invalid := range []string{"", "Sql", "@1.0.0", "Sql@", "Sql@notaversion"} {
		_, err := ParseSelectedVersion(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}

func TestSelectedVersionIdentity(t *testing.T) {
	a := MustParseSelectedVersion("Http@3.0.0")
	b := MustParseSelectedVersion("Http@3.0.0")
	b.Installed = true
	b.RemoteIndex = 2
	assert.True(t, a.Equal(b), "annotations must not take part in identity")
	assert.Equal(t, a.Key(), b.Key())

	c := MustParseSelectedVersion("Http@3.0.0+build5")
	assert.True(t, a.Equal(c))
	assert.Equal(t, a.Key(), c.Key())

	d := MustParseSelectedVersion("Http@4.0.0")
	assert.False(t, a.Equal(d))
	assert.NotEqual(t, a.Key(), d.Key())
}

func TestSelectedVersionOrder(t *testing.T) {
	vs := []SelectedVersion{
		MustParseSelectedVersion("StdLib@4.0.0"),
		MustParseSelectedVersion("Http@4.0.0"),
		MustParseSelectedVersion("http@1.0.0"),
		MustParseSelectedVersion("Http@3.0.0"),
		MustParseSelectedVersion("App@1.0.0"),
		MustParseSelectedVersion("Sql@2.0.0"),
	}
	vs[3].Installed = true
	sort.Slice(vs, func(i, j int) bool { return vs[i].Less(vs[j]) })
	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"App@1.0.0", "Http@4.0.0", "Http@3.0.0", "http@1.0.0", "Sql@2.0.0", "StdLib@4.0.0"}, got)
}

func TestCompareInstalledWins(t *testing.T) {
	newest := MustParseSelectedVersion("Http@4.0.0")
	installed := MustParseSelectedVersion("Http@3.0.0")
	installed.Installed = true
	assert.Equal(t, 1, installed.Compare(newest))
	assert.Equal(t, -1, newest.Compare(installed))
	assert.Equal(t, 0, newest.Compare(newest))
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		rng      string
		version  string
		expected bool
	}{
		{"=2.0.0", "2.0.0", true},
		{"=2.0.0", "2.0.1", false},
		{">=3.0.0, <=4.0.0", "3.0.0", true},
		{">=3.0.0, <=4.0.0", "4.0.0", true},
		{">=3.0.0, <=4.0.0", "2.0.0", false},
		{">=9.0.0", "1.0.0", false},
		{"", "0.1.0", true},
		{"*", "12.0.0", true},
	}
	for _, test := range tests {
		r, err := ParseRange(test.rng)
		require.NoError(t, err, "range %q", test.rng)
		assert.Equal(t, test.expected, r.Contains(semver.MustParse(test.version)), "%s in %q", test.version, test.rng)
	}
	_, err := ParseRange("not a range!")
	assert.Error(t, err)
}

func TestParseErrorsKeepCause(t *testing.T) {
	_, err := ParseSelectedVersion("Sql@not-a-version")
	require.Error(t, err)
	assert.Equal(t, semver.ErrInvalidSemVer, errors.Cause(err))
	assert.Contains(t, err.Error(), `invalid version in "Sql@not-a-version"`)

	_, err = ParseRange("not a range!")
	require.Error(t, err)
	assert.NotEqual(t, err, errors.Cause(err), "semver error must be kept as the cause")
	assert.Contains(t, err.Error(), `invalid version range "not a range!"`)
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "*", Any.String())
	assert.Equal(t, "=1.0.0", MustParseRange("=1.0.0").String())
	assert.Equal(t, "ConflictingDependency =2.0.0", Requires("ConflictingDependency", "=2.0.0").String())
}

func TestParseKind(t *testing.T) {
	for s, expected := range map[string]Kind{"": Provided, "Provided": Provided, "engine": Engine, " external ": External} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, expected, k)
	}
	_, err := ParseKind("optional")
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	root := NewRoot(Requires("Sql", "=2.0.0"))
	sv := Selected(root)
	assert.Equal(t, RootName, sv.Name)
	assert.True(t, sv.Installed)
	assert.Equal(t, Local, sv.RemoteIndex)
	assert.Len(t, root.Requirements(), 1)
}

func ExampleSelectedVersion_Compare() {
	installed := MustParseSelectedVersion("Http@3.0.0")
	installed.Installed = true
	newest := MustParseSelectedVersion("Http@4.0.0")
	if installed.Compare(newest) > 0 {
		fmt.Printf("%s is preferred over %s\n", installed, newest)
	}
	// Output: Http@3.0.0 is preferred over Http@4.0.0
}
