//go:build !windows

package blobstore

import "os"

// syncDir fsyncs the parent directory so the rename itself is durable.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
