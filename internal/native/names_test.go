package native

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateNames(t *testing.T) {
	tests := []struct {
		name     string
		library  string
		goos     string
		expected []string
	}{
		{"linux shared object", "traa", "linux", []string{"libtraa.so"}},
		{"android shared object", "traa", "android", []string{"libtraa.so"}},
		{"darwin dylib", "traa", "darwin", []string{"libtraa.dylib", "traa.framework/traa"}},
		{"windows dll", "traa", "windows", []string{"traa.dll", "libtraa.dll"}},
		{"explicit file name", "libtraa.so.1", "linux", []string{"libtraa.so.1"}},
		{"explicit path", "/opt/traa/libtraa.so", "linux", []string{"/opt/traa/libtraa.so"}},
		{"empty name", "", "linux", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CandidateNames(tt.library, tt.goos))
		})
	}
}

func TestCandidates(t *testing.T) {
	file := CandidateNames("traa", runtime.GOOS)[0]

	t.Run("skips directories without the library", func(t *testing.T) {
		dir := t.TempDir()

		got := candidates("traa", []string{dir})

		assert.Equal(t, CandidateNames("traa", runtime.GOOS), got)
	})

	t.Run("orders search paths before bare names", func(t *testing.T) {
		first := t.TempDir()
		second := t.TempDir()
		for _, dir := range []string{first, second} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, file), nil, 0o644))
		}

		got := candidates("traa", []string{first, second, first})

		require.GreaterOrEqual(t, len(got), 3)
		assert.Equal(t, filepath.Join(first, file), got[0])
		assert.Equal(t, filepath.Join(second, file), got[1])
		assert.Equal(t, file, got[2])
	})
}

func TestDefaultSearchPaths(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	t.Setenv(LibraryPathEnv, a+string(os.PathListSeparator)+b)

	paths := DefaultSearchPaths()

	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, a, paths[0])
	assert.Equal(t, b, paths[1])
}
