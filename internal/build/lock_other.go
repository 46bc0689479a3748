//go:build !unix && !windows

package build

import "os"

// Platforms without advisory locks run unserialized.
func lock(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
