package native

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// LibraryPathEnv overrides and extends the directories searched for the native library.
const LibraryPathEnv = "TRAA_LIBRARY_PATH"

// CandidateNames maps a logical library name to the file names the platform
// loader expects on goos. A name that already carries a directory or an
// extension is returned unchanged.
func CandidateNames(name, goos string) []string {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\`) || filepath.Ext(name) != "" {
		return []string{name}
	}

	switch goos {
	case "windows":
		return []string{name + ".dll", "lib" + name + ".dll"}
	case "darwin", "ios":
		return []string{"lib" + name + ".dylib", name + ".framework/" + name}
	default:
		return []string{"lib" + name + ".so"}
	}
}

// DefaultSearchPaths returns the directories searched before the platform
// loader's own search path when a loader is given none. Entries from
// TRAA_LIBRARY_PATH come first.
func DefaultSearchPaths() []string {
	var paths []string
	if env := os.Getenv(LibraryPathEnv); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths, dir, filepath.Join(dir, "lib"))
	}

	return compact(paths)
}

// candidates expands a logical name into the ordered list of paths to try.
// Files found in searchPaths come first; bare file names follow so the
// platform loader can apply its own search rules.
func candidates(name string, searchPaths []string) []string {
	files := CandidateNames(name, runtime.GOOS)
	if len(files) == 0 {
		return nil
	}

	var out []string
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return files
	}

	for _, dir := range searchPaths {
		for _, file := range files {
			path := filepath.Join(dir, file)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				out = append(out, path)
			}
		}
	}

	out = append(out, files...)
	return compact(out)
}

func compact(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
