//go:build !linux

package fusebridge

import (
	"errors"

	"github.com/filebox/ecsfs"
)

// Mount is unavailable outside Linux: bazil.org/fuse only drives the
// kernel's FUSE device on Linux (and via a different stack on
// Darwin/FreeBSD that this repo doesn't wire in).
func Mount(mountpoint string, fsys *ecsfs.FS) error {
	return errors.New("fusebridge: FUSE mount is only supported on Linux in this build")
}
