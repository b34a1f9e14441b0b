package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"mkvlang/internal/config"
	"mkvlang/internal/deps"
)

// CheckDirectoryAccess passes when path is a directory mkvlang can list and
// create files in. Backups and the history database both live in such
// directories.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(format string, args ...any) Result {
		return Result{Name: name, Detail: path + " (error: " + fmt.Sprintf(format, args...) + ")"}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail("does not exist")
	case err != nil:
		return fail("stat: %v", err)
	case !info.IsDir():
		return fail("is not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail("insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckSystemDeps resolves the configured mkvtoolnix executables.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{Name: "mkvinfo", Command: cfg.MkvinfoBinary(), Description: "Required to list track languages"},
		{Name: "mkvmerge", Command: cfg.MkvmergeBinary(), Description: "Required to rewrite track languages"},
	})
}
