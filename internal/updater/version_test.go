package updater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionConstraint(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		want       bool
	}{
		{">=1.0.0,<2.0.0", "1.0.0", true},
		{">=1.0.0,<2.0.0", "v1.4.2", true},
		{">=1.0.0,<2.0.0", "2.0.0", false},
		{"~2.1", "2.1.9", true},
		{"~2.1", "2.2.0", false},
		{"^3", "3.7.0", true},
		{"^3", "4.0.0-beta.1", false},
		{"1.x", "1.99.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.constraint+" "+tt.version, func(t *testing.T) {
			c, err := ParseVersionConstraint(tt.constraint)
			require.NoError(t, err)
			got, err := SatisfiesConstraint(tt.version, c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionConstraintErrors(t *testing.T) {
	_, err := ParseVersionConstraint("  ")
	require.ErrorIs(t, err, ErrEmptyConstraint)

	_, err = ParseVersionConstraint("newest please")
	require.Error(t, err)

	c, err := ParseVersionConstraint(">=1.0.0")
	require.NoError(t, err)
	_, err = SatisfiesConstraint("trunk", c)
	require.Error(t, err)
}

func TestCompareVersions(t *testing.T) {
	tests := map[string]struct {
		v1, v2 string
		want   int
	}{
		"equal":              {"2.4.1", "2.4.1", 0},
		"v prefix":           {"v2.4.1", "2.4.1", 0},
		"patch behind":       {"2.4.1", "2.4.10", -1},
		"minor ahead":        {"2.10.0", "2.9.9", 1},
		"prerelease behind":  {"3.0.0-rc.1", "3.0.0", -1},
		"build metadata":     {"1.0.0+20240101", "1.0.0", 0},
		"partial is coerced": {"1.2", "1.2.0", 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := CompareVersions("trunk", "1.0.0")
	require.Error(t, err)
	_, err = CompareVersions("1.0.0", "")
	require.Error(t, err)
}

func TestIsValidVersion(t *testing.T) {
	for _, v := range []string{"0.0.0", "v5.0.0", "1.2.3-alpha.2", "7", "6.4"} {
		assert.True(t, IsValidVersion(v), v)
	}
	for _, v := range []string{"", "trunk", "1.2.3.4.5", "main-branch"} {
		assert.False(t, IsValidVersion(v), v)
	}
}

func TestCompareLoose(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"6.4.2", "6.0", 1},
		{"6.0", "6.0.0", 0},
		{"8.1.2-1ubuntu", "8.1", 1},
		{"8.1.x", "8.1.2", -1},
		{"6.4-RC1", "6.4", -1},
		{"7.4", "8.0", -1},
		{"1.0", "", 1},
		{"", "", 0},
		{"beta", "alpha", 1},
	}
	for _, tt := range tests {
		t.Run(tt.v1+" vs "+tt.v2, func(t *testing.T) {
			assert.Equal(t, tt.want, compareLoose(tt.v1, tt.v2))
		})
	}
}

func TestNewestTag(t *testing.T) {
	tag, warnings, ok := NewestTag([]string{"v1.2.0", "1.10.0", "latest", "1.9.9"})
	require.True(t, ok)
	assert.Equal(t, "1.10.0", tag)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "latest")

	tag, _, ok = NewestTag([]string{"nightly"})
	assert.False(t, ok)
	assert.Equal(t, NoVersion, tag)

	tag, warnings, ok = NewestTag(nil)
	assert.False(t, ok)
	assert.Equal(t, NoVersion, tag)
	assert.Empty(t, warnings)
}
