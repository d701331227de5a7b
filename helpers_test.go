package ecsfs

import "testing"

// newTestFS formats and mounts an in-memory image of dataBlocks data
// blocks, grounded on the teacher library's DefaultFATByteBlocks test
// fixture (there: a byte-slice device pre-loaded with a golden image; here:
// format on the fly via the library's own Formatter, since this format has
// no golden fixture to borrow).
func newTestFS(t *testing.T, dataBlocks int) *FS {
	t.Helper()
	fatBlockCount := (dataBlocks*fatEntrySize + BlockSize - 1) / BlockSize
	totalBlocks := fatBlockCount + 2 + dataBlocks

	dev := NewMemBlockDevice(totalBlocks)
	var fm Formatter
	if err := fm.Format(dev, "mem", dataBlocks, "test"); err != nil {
		t.Fatalf("format: %v", err)
	}

	var fsys FS
	if err := fsys.Mount(dev, "mem"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(func() {
		if fsys.mounted {
			fsys.Unmount()
		}
	})
	return &fsys
}
