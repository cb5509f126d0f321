package model

import (
	"os"
	"path/filepath"
	"strings"
)

// AppGroupID names the directory shared by every cooperating process.
// It is referenced only through SharedStorePath.
const AppGroupID = "group.dev.nhle.taskdock"

// StoreFileName is the SQLite database file inside the shared directory.
const StoreFileName = "taskdock.sqlite"

// SharedStorePath returns the store location under a shared root. Every
// process (app, widget, live activity) must build the path with this
// function.
func SharedStorePath(root string) string {
	return filepath.Join(ExpandHome(root), AppGroupID, StoreFileName)
}

// LocalStorePath returns the process-local fallback location used when the
// shared root is unreachable.
func LocalStorePath(dir string) string {
	return filepath.Join(ExpandHome(dir), StoreFileName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
