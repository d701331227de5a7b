package ecsfs

import "log/slog"

// validName reports whether name is a legal ECS150FS filename: 1 to
// FilenameLen-1 bytes, since the on-disk field reserves the final byte
// for the NUL terminator.
func validName(name string) bool {
	return len(name) > 0 && len(name) < FilenameLen
}

// findEntry returns the slot index of the directory entry named name, or
// -1 if no such entry exists.
func (fsys *FS) findEntry(name string) int {
	for i := 0; i < FileMaxCount; i++ {
		e := dirEntryAt(fsys.dirBlock, i)
		if !e.empty() && e.name() == name {
			return i
		}
	}
	return -1
}

// Create adds a new, empty file named name to the root directory.
func (fsys *FS) Create(name string) error {
	if !fsys.mounted {
		return frNotMounted
	}
	if !validName(name) {
		return frBadArgument
	}
	fsys.trace("create", slog.String("name", name))

	free := -1
	for i := 0; i < FileMaxCount; i++ {
		e := dirEntryAt(fsys.dirBlock, i)
		if e.empty() {
			if free == -1 {
				free = i
			}
			continue
		}
		if e.name() == name {
			return frNameCollision
		}
	}
	if free == -1 {
		return frTableFull
	}
	e := dirEntryAt(fsys.dirBlock, free)
	e.clear()
	e.setName(name)
	e.setSize(0)
	e.setFirstBlock(eoc)
	return nil
}

// Delete removes the named file, reclaiming its entire FAT chain. It fails
// if the file is currently open in any descriptor.
func (fsys *FS) Delete(name string) error {
	if !fsys.mounted {
		return frNotMounted
	}
	if !validName(name) {
		return frBadArgument
	}
	idx := fsys.findEntry(name)
	if idx == -1 {
		return frNotFound
	}
	for i := range fsys.fds {
		if fsys.fds[i].used && fsys.fds[i].dirIdx == idx {
			return frBusy
		}
	}
	fsys.trace("delete", slog.String("name", name))

	e := dirEntryAt(fsys.dirBlock, idx)
	fsys.freeChain(e.firstBlock())
	e.clear()
	e.setFirstBlock(eoc)
	return nil
}

// DirEntry is one row of an Ls listing.
type DirEntry struct {
	Name       string
	Size       uint32
	FirstBlock uint16
}

// Ls returns every non-empty directory entry in slot order.
func (fsys *FS) Ls() ([]DirEntry, error) {
	if !fsys.mounted {
		return nil, frNotMounted
	}
	var out []DirEntry
	for i := 0; i < FileMaxCount; i++ {
		e := dirEntryAt(fsys.dirBlock, i)
		if e.empty() {
			continue
		}
		out = append(out, DirEntry{Name: e.name(), Size: e.size(), FirstBlock: e.firstBlock()})
	}
	return out, nil
}

// freeChain walks a FAT chain starting at head, resetting every visited
// entry to free (C3: delete reclaims every entry exactly once).
func (fsys *FS) freeChain(head uint16) {
	blk := head
	for blk != eoc {
		next := fsys.fat.get(int(blk))
		fsys.fat.set(int(blk), fatFree)
		blk = next
	}
}

// scanFree performs the first-fit linear scan over FAT entries
// 1..dataBlockCount-1, the only allocation primitive (C1: never returns
// index 0 or an already-allocated entry).
func (fsys *FS) scanFree() (int, bool) {
	for i := 1; i < int(fsys.sb.dataBlockCount); i++ {
		if fsys.fat.get(i) == fatFree {
			return i, true
		}
	}
	return 0, false
}

// walkToNth follows the chain from head k links, stopping early at EOC.
// It returns the last block index reached and whether it ran off the end
// of the chain before k links (an "out of chain" signal).
func (fsys *FS) walkToNth(head uint16, k int) (blk uint16, outOfChain bool) {
	blk = head
	for i := 0; i < k; i++ {
		if blk == eoc {
			return blk, true
		}
		blk = fsys.fat.get(int(blk))
	}
	return blk, blk == eoc
}

// chainLength counts the links from head to EOC; 0 if head is already EOC.
func (fsys *FS) chainLength(head uint16) int {
	n := 0
	for blk := head; blk != eoc; blk = fsys.fat.get(int(blk)) {
		n++
	}
	return n
}

// extendChain finds a free data block, marks it EOC, and links it onto
// the chain whose current head/tail is described by head and tail. If
// head is eoc (empty chain), the new block becomes the head. It returns
// the new block index, or false if the disk is full (C2: extension
// preserves chain well-foundedness).
func (fsys *FS) extendChain(head, tail uint16) (newHead, newBlock uint16, ok bool) {
	free, found := fsys.scanFree()
	if !found {
		return head, 0, false
	}
	fsys.fat.set(free, eoc)
	if head == eoc {
		return uint16(free), uint16(free), true
	}
	fsys.fat.set(int(tail), uint16(free))
	return head, uint16(free), true
}
