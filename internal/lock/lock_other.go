//go:build !unix && !windows

package lock

import "os"

// No OS lock on this platform; only the in-process mutex applies.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
