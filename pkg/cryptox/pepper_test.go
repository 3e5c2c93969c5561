package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPepper_CreatesFileOnce(t *testing.T) {
	t.Cleanup(func() { SetPepperPath("") })

	path := filepath.Join(t.TempDir(), "secrets", "pepper")
	SetPepperPath(path)
	require.NoError(t, LoadPepper())

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	SetPepperPath(path)
	require.NoError(t, LoadPepper())
	p, err := getPepper()
	require.NoError(t, err)
	require.Equal(t, string(first), p)
}

func TestLoadPepper_EmptyFileFails(t *testing.T) {
	t.Cleanup(func() { SetPepperPath("") })

	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	SetPepperPath(path)
	require.Error(t, LoadPepper())
}

func TestPepper_InMemoryWithoutPath(t *testing.T) {
	t.Cleanup(func() { SetPepperPath("") })

	SetPepperPath("")
	a, err := getPepper()
	require.NoError(t, err)
	b, err := getPepper()
	require.NoError(t, err)
	require.Equal(t, a, b)
}
