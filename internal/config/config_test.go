package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "WinJS.UI.", c.Root)
	assert.Equal(t, "element", c.ElementSuffix)
	assert.Equal(t, "RawControlApis", c.Variable)
	assert.False(t, c.AllowUnresolved)
	assert.Contains(t, c.Exclude, "WinJS.UI.Repeater")
	assert.Equal(t, "onClick", c.Events["onclick"])
	assert.Equal(t, "onBeforeShow", c.Events["onbeforeshow"])
}

func TestPrepareMergesFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(first, []byte("variable: First\nevents:\n  onwhoosh: onWhoosh\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("variable: Second\nallow_unresolved: true\n"), 0o644))

	v := viper.New()
	require.NoError(t, Prepare(v, discard, first, second))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "Second", c.Variable)
	assert.True(t, c.AllowUnresolved)
	assert.Equal(t, "WinJS.UI.", c.Root)
	assert.Equal(t, "onWhoosh", c.Events["onwhoosh"])
	assert.Equal(t, "onClick", c.Events["onclick"])
}

func TestPrepareMissingFile(t *testing.T) {
	err := Prepare(viper.New(), discard, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(EnvPrefix+"_ROOT", "MyLib.Controls.")
	t.Setenv(EnvPrefix+"_ALLOW_UNRESOLVED", "true")

	v := viper.New()
	require.NoError(t, Prepare(v, discard))
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "MyLib.Controls.", c.Root)
	assert.True(t, c.AllowUnresolved)
}

func TestClone(t *testing.T) {
	c := &Config{Exclude: []string{"a"}, Events: map[string]string{"OnClick": "onClick"}}
	out := c.Clone()
	out.Exclude[0] = "b"
	assert.Equal(t, "a", c.Exclude[0])
	assert.Equal(t, map[string]string{"onclick": "onClick"}, out.Events)
}
