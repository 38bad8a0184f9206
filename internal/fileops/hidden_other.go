//go:build !windows

package fileops

// setHidden is a no-op: the leading dot already hides the trash.
func setHidden(string) error { return nil }
