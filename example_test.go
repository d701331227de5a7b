package ecsfs_test

import (
	"fmt"

	"github.com/filebox/ecsfs"
)

// ExampleFS_basicUsage formats an in-memory image, mounts it, and runs one
// file through create/write/read/delete, mirroring the teacher library's
// ExampleFS_basic_usage walkthrough.
func ExampleFS_basicUsage() {
	const dataBlocks = 8
	fatBlockCount := (dataBlocks*2 + ecsfs.BlockSize - 1) / ecsfs.BlockSize
	dev := ecsfs.NewMemBlockDevice(fatBlockCount + 2 + dataBlocks)

	var fm ecsfs.Formatter
	if err := fm.Format(dev, "mem", dataBlocks, "example"); err != nil {
		fmt.Println("format:", err)
		return
	}

	var fsys ecsfs.FS
	if err := fsys.Mount(dev, "mem"); err != nil {
		fmt.Println("mount:", err)
		return
	}
	defer fsys.Unmount()

	if err := fsys.Create("greeting.txt"); err != nil {
		fmt.Println("create:", err)
		return
	}
	fd, err := fsys.Open("greeting.txt")
	if err != nil {
		fmt.Println("open:", err)
		return
	}

	if _, err := fsys.Write(fd, []byte("hello, ecsfs")); err != nil {
		fmt.Println("write:", err)
		return
	}
	if err := fsys.Lseek(fd, 0); err != nil {
		fmt.Println("lseek:", err)
		return
	}

	buf := make([]byte, 12)
	n, err := fsys.Read(fd, buf)
	if err != nil {
		fmt.Println("read:", err)
		return
	}
	fmt.Println(string(buf[:n]))

	if err := fsys.Close(fd); err != nil {
		fmt.Println("close:", err)
		return
	}
	if err := fsys.Delete("greeting.txt"); err != nil {
		fmt.Println("delete:", err)
		return
	}

	// Output: hello, ecsfs
}
