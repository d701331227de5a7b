// Package ecsfs implements a small user-space file system: a single-level
// directory and a FAT-style block allocation map mounted over a fixed-size
// block device. An application mounts an image, then creates, deletes,
// lists, opens, reads, writes, seeks, and stats files backed by fixed-size
// blocks on the underlying device.
package ecsfs

import (
	"context"
	"fmt"
	"log/slog"
)

// fileHandle is one slot of the open-file table (spec.md component D).
// It refers to a directory slot by index rather than by pointer so it
// survives a directory array ever being reallocated, mirroring the
// teacher library's use of an index-based cluster reference instead of a
// raw back-pointer.
type fileHandle struct {
	used   bool
	dirIdx int
	offset uint32
}

// FS is a mounted ECS150FS volume. The zero value is unmounted; call Mount
// before any other operation. All public operations are carried as methods
// on an explicit *FS handle (spec.md §9's "explicit handle" resolution) so
// multiple independent mounts can coexist in the same process if the caller
// wishes, even though spec.md's Non-goals exclude concurrent access to a
// single mount from multiple threads.
type FS struct {
	mounted bool
	dev     BlockDevice

	sb  superblock
	fat fatView

	dirBlock []byte // one BlockSize block, the decoded root directory
	fds      [OpenMaxCount]fileHandle

	log *slog.Logger
}

// SetLogger attaches a structured logger used for trace/debug diagnostics.
// The zero value logs nothing, matching the library's "quiet unless asked"
// default.
func (fsys *FS) SetLogger(log *slog.Logger) {
	fsys.log = log
}

const slogLevelTrace = slog.LevelDebug - 2

func (fsys *FS) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if fsys.log != nil {
		fsys.log.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

func (fsys *FS) trace(msg string, attrs ...slog.Attr) { fsys.logattrs(slogLevelTrace, msg, attrs...) }
func (fsys *FS) debug(msg string, attrs ...slog.Attr) { fsys.logattrs(slog.LevelDebug, msg, attrs...) }
func (fsys *FS) warn(msg string, attrs ...slog.Attr)  { fsys.logattrs(slog.LevelWarn, msg, attrs...) }

// Mount opens the block device backed by path, validates and loads the
// superblock, FAT, and root directory into memory, and initializes the
// open-file table. A failed mount releases whatever partial state it
// acquired before returning.
func (fsys *FS) Mount(dev BlockDevice, path string) (err error) {
	if fsys.mounted {
		return frAlreadyMounted
	}
	fsys.trace("mount", slog.String("path", path))

	if err := dev.Open(path); err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}
	// Ensure the device is closed on any failure path below.
	opened := true
	defer func() {
		if err != nil && opened {
			dev.Close()
		}
	}()

	nblocks, err := dev.BlockCount()
	if err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}

	var block0 [BlockSize]byte
	if err := dev.ReadBlock(0, block0[:]); err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}

	var sb superblock
	if fr := sb.decode(block0[:]); fr != frOK {
		return fr
	}
	if int(sb.totalBlocks) != nblocks {
		return frBadSuperblock
	}
	if sb.rootDirBlock != uint16(sb.fatBlockCount)+1 {
		return frBadSuperblock
	}
	if sb.dataStartBlock != sb.rootDirBlock+1 {
		return frBadSuperblock
	}
	if sb.dataBlockCount == 0 {
		return frBadSuperblock
	}
	if int(sb.dataStartBlock)+int(sb.dataBlockCount) != nblocks {
		return frBadSuperblock
	}

	fatBuf := make([]byte, int(sb.fatBlockCount)*BlockSize)
	for i := 0; i < int(sb.fatBlockCount); i++ {
		if err := dev.ReadBlock(1+i, fatBuf[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return fmt.Errorf("%w: %v", frIOErr, err)
		}
	}
	fat := fatView{data: fatBuf}
	fat.set(0, eoc) // Entry 0 is reserved; on-disk value is ignored.

	dirBlock := make([]byte, BlockSize)
	if err := dev.ReadBlock(int(sb.rootDirBlock), dirBlock); err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}

	fsys.dev = dev
	fsys.sb = sb
	fsys.fat = fat
	fsys.dirBlock = dirBlock
	fsys.fds = [OpenMaxCount]fileHandle{}
	fsys.mounted = true
	return nil
}

// Unmount flushes the superblock, FAT, and root directory to the device,
// closes it, and releases in-memory state. It fails if no disk is mounted
// or if any file descriptor is still open; a failed flush still releases
// in-memory resources before surfacing the error.
func (fsys *FS) Unmount() error {
	if !fsys.mounted {
		return frNotMounted
	}
	for i := range fsys.fds {
		if fsys.fds[i].used {
			return frBusy
		}
	}
	fsys.trace("unmount")

	flushErr := fsys.flush()
	closeErr := fsys.dev.Close()

	fsys.mounted = false
	fsys.dev = nil
	fsys.fat = fatView{}
	fsys.dirBlock = nil
	fsys.fds = [OpenMaxCount]fileHandle{}

	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %v", frIOErr, closeErr)
	}
	return nil
}

// flush writes the superblock, every FAT block, and the root directory
// block back to the device. It is the only place metadata is persisted;
// data blocks written by Write go directly to the device (spec.md §4.D).
func (fsys *FS) flush() error {
	var block0 [BlockSize]byte
	fsys.sb.encode(block0[:])
	if err := fsys.dev.WriteBlock(0, block0[:]); err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}
	for i := 0; i < int(fsys.sb.fatBlockCount); i++ {
		if err := fsys.dev.WriteBlock(1+i, fsys.fat.data[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return fmt.Errorf("%w: %v", frIOErr, err)
		}
	}
	if err := fsys.dev.WriteBlock(int(fsys.sb.rootDirBlock), fsys.dirBlock); err != nil {
		return fmt.Errorf("%w: %v", frIOErr, err)
	}
	return nil
}

// Info is the decoded result of FS.Info.
type Info struct {
	TotalBlocks    uint16
	FATBlockCount  uint8
	RootDirBlock   uint16
	DataStartBlock uint16
	DataBlockCount uint16
	FreeFATEntries int
	FreeDirSlots   int
}

// Info reports superblock fields plus free-entry counts.
func (fsys *FS) Info() (Info, error) {
	if !fsys.mounted {
		return Info{}, frNotMounted
	}
	freeFAT := 0
	for i := 0; i < int(fsys.sb.dataBlockCount); i++ {
		if fsys.fat.get(i) == fatFree {
			freeFAT++
		}
	}
	freeDir := 0
	for i := 0; i < FileMaxCount; i++ {
		if dirEntryAt(fsys.dirBlock, i).empty() {
			freeDir++
		}
	}
	return Info{
		TotalBlocks:    fsys.sb.totalBlocks,
		FATBlockCount:  fsys.sb.fatBlockCount,
		RootDirBlock:   fsys.sb.rootDirBlock,
		DataStartBlock: fsys.sb.dataStartBlock,
		DataBlockCount: fsys.sb.dataBlockCount,
		FreeFATEntries: freeFAT,
		FreeDirSlots:   freeDir,
	}, nil
}

// String renders Info as the plain-text report the CLI's "info" subcommand
// writes to standard output, grounded on the original source's fs_info().
func (in Info) String() string {
	return fmt.Sprintf(
		"FS Info:\ntotal_blk_count=%d\nfat_blk_count=%d\nrdir_blk=%d\ndata_blk=%d\ndata_blk_count=%d\nfat_free_ratio=%d/%d\nrdir_free_ratio=%d/%d\n",
		in.TotalBlocks, in.FATBlockCount, in.RootDirBlock, in.DataStartBlock, in.DataBlockCount,
		in.FreeFATEntries, in.DataBlockCount, in.FreeDirSlots, FileMaxCount,
	)
}
