package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfileParsesCurveWithPoints(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.toml", `
default_speed = 30

[[points]]
temperature = 50
speed = 30

[[points]]
temperature = 70
speed = 60

[[points]]
temperature = 85
speed = 100
`)

	curve, err := LoadProfile(dir, "default")
	require.NoError(t, err)

	speed := curve.SpeedForTemperature(60)
	assert.Equal(t, 30, speed.Percentage())
}

func TestLoadProfileMissingFileReturnsError(t *testing.T) {
	_, err := LoadProfile(t.TempDir(), "nonexistent")
	assert.Error(t, err)
}

func TestListProfilesReturnsTomlBasenames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.toml", "default_speed = 30\n")
	writeFile(t, dir, "silent.toml", "default_speed = 10\n")
	writeFile(t, dir, "notes.txt", "not a profile")

	names, err := ListProfiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "silent"}, names)
}

func TestListProfilesMissingDirYieldsEmptyList(t *testing.T) {
	names, err := ListProfiles(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
