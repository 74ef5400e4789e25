// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package dex

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// CleanAndExpandPath expands environment variables and a leading ~ or ~user
// in path, and cleans the result. An empty path is returned unchanged.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}
	path = os.ExpandEnv(path)
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	rest := filepath.ToSlash(path[1:])
	name, tail, _ := strings.Cut(rest, "/")

	lookup := user.Current
	if name != "" {
		lookup = func() (*user.User, error) { return user.Lookup(name) }
	}
	home := "."
	if u, err := lookup(); err == nil && u.HomeDir != "" {
		home = u.HomeDir
	}
	return filepath.Join(home, filepath.FromSlash(tail))
}
