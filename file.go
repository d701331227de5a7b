package ecsfs

import "log/slog"

// handle validates fd and returns the open-file table slot backing it.
func (fsys *FS) handle(fd int) (*fileHandle, error) {
	if fd < 0 || fd >= OpenMaxCount {
		return nil, frBadArgument
	}
	fh := &fsys.fds[fd]
	if !fh.used {
		return nil, frBadArgument
	}
	return fh, nil
}

// Open locates the named directory entry and reserves the lowest-indexed
// empty open-file table slot bound to it at offset 0.
func (fsys *FS) Open(name string) (int, error) {
	if !fsys.mounted {
		return -1, frNotMounted
	}
	if !validName(name) {
		return -1, frBadArgument
	}
	idx := fsys.findEntry(name)
	if idx == -1 {
		return -1, frNotFound
	}
	for i := range fsys.fds {
		if !fsys.fds[i].used {
			fsys.fds[i] = fileHandle{used: true, dirIdx: idx}
			fsys.trace("open", slog.String("name", name), slog.Int("fd", i))
			return i, nil
		}
	}
	return -1, frTableFull
}

// Close empties the descriptor's slot.
func (fsys *FS) Close(fd int) error {
	if !fsys.mounted {
		return frNotMounted
	}
	fh, err := fsys.handle(fd)
	if err != nil {
		return err
	}
	*fh = fileHandle{}
	return nil
}

// Stat returns the size in bytes of the file bound to fd.
func (fsys *FS) Stat(fd int) (uint32, error) {
	if !fsys.mounted {
		return 0, frNotMounted
	}
	fh, err := fsys.handle(fd)
	if err != nil {
		return 0, err
	}
	return dirEntryAt(fsys.dirBlock, fh.dirIdx).size(), nil
}

// Lseek sets fd's offset. offset must not exceed the file's current size.
func (fsys *FS) Lseek(fd int, offset uint32) error {
	if !fsys.mounted {
		return frNotMounted
	}
	fh, err := fsys.handle(fd)
	if err != nil {
		return err
	}
	if offset > dirEntryAt(fsys.dirBlock, fh.dirIdx).size() {
		return frBadArgument
	}
	fh.offset = offset
	return nil
}

// Read copies up to len(buf) bytes starting at fd's current offset into
// buf, advancing the offset by the number of bytes actually delivered.
// It never returns fewer bytes than are available unless the underlying
// device fails mid-transfer, per spec.md's short-read-as-byte-count
// contract.
func (fsys *FS) Read(fd int, buf []byte) (int, error) {
	if !fsys.mounted {
		return 0, frNotMounted
	}
	fh, err := fsys.handle(fd)
	if err != nil {
		return 0, err
	}
	e := dirEntryAt(fsys.dirBlock, fh.dirIdx)
	size := e.size()
	offset := fh.offset
	if offset >= size {
		return 0, nil
	}
	n := len(buf)
	if remain := int(size - offset); n > remain {
		n = remain
	}
	if n == 0 {
		return 0, nil
	}

	firstLogical := int(offset) / BlockSize
	lastLogical := (int(offset) + n - 1) / BlockSize
	blk, outOfChain := fsys.walkToNth(e.firstBlock(), firstLogical)
	if outOfChain {
		return 0, nil
	}

	delivered := 0
	var bounce [BlockSize]byte
	for logical := firstLogical; logical <= lastLogical; logical++ {
		if err := fsys.dev.ReadBlock(int(fsys.sb.dataStartBlock)+int(blk), bounce[:]); err != nil {
			fsys.warn("read block failed", slog.Int("block", int(blk)), slog.String("err", err.Error()))
			break
		}
		blockStart := logical * BlockSize
		lo, hi := blockStart, blockStart+BlockSize
		if lo < int(offset) {
			lo = int(offset)
		}
		if hi > int(offset)+n {
			hi = int(offset) + n
		}
		copy(buf[lo-int(offset):hi-int(offset)], bounce[lo-blockStart:hi-blockStart])
		delivered = hi - int(offset)
		if logical != lastLogical {
			blk = fsys.fat.get(int(blk))
		}
	}
	fh.offset += uint32(delivered)
	return delivered, nil
}

// Write stores len(buf) bytes at fd's current offset, allocating new data
// blocks on demand when the write extends past the file's current size.
// If the disk runs out of free blocks mid-extension, it writes as many
// bytes as the blocks it did manage to allocate can hold; the number of
// bytes written can therefore be less than len(buf), even 0.
func (fsys *FS) Write(fd int, buf []byte) (int, error) {
	if !fsys.mounted {
		return 0, frNotMounted
	}
	fh, err := fsys.handle(fd)
	if err != nil {
		return 0, err
	}
	n := len(buf)
	if n == 0 {
		return 0, nil
	}
	e := dirEntryAt(fsys.dirBlock, fh.dirIdx)
	size := e.size()
	offset := fh.offset
	targetEnd := offset + uint32(n)
	head := e.firstBlock()
	grew := false

	if targetEnd > size {
		grew = true
		needed := int(ceilDivU32(targetEnd, BlockSize))
		curLen := fsys.chainLength(head)
		tail := fsys.tailOf(head, curLen)
		for curLen < needed {
			newHead, newBlock, ok := fsys.extendChain(head, tail)
			if !ok {
				maxBytes := uint32(curLen) * BlockSize
				if offset >= maxBytes {
					n = 0
				} else {
					n = int(maxBytes - offset)
				}
				targetEnd = offset + uint32(n)
				break
			}
			head, tail = newHead, newBlock
			curLen++
		}
	}
	if grew {
		e.setFirstBlock(head)
	}
	if n == 0 {
		return 0, nil
	}

	firstLogical := int(offset) / BlockSize
	lastLogical := (int(targetEnd) - 1) / BlockSize
	blk, _ := fsys.walkToNth(head, firstLogical)

	written := 0
	var bounce [BlockSize]byte
	for logical := firstLogical; logical <= lastLogical; logical++ {
		blockStart := logical * BlockSize
		lo, hi := blockStart, blockStart+BlockSize
		if lo < int(offset) {
			lo = int(offset)
		}
		if hi > int(targetEnd) {
			hi = int(targetEnd)
		}
		fullBlock := lo == blockStart && hi == blockStart+BlockSize
		blockIdx := int(fsys.sb.dataStartBlock) + int(blk)
		if !fullBlock {
			if err := fsys.dev.ReadBlock(blockIdx, bounce[:]); err != nil {
				fsys.warn("write read-modify-write failed", slog.Int("block", int(blk)), slog.String("err", err.Error()))
				break
			}
		}
		copy(bounce[lo-blockStart:hi-blockStart], buf[lo-int(offset):hi-int(offset)])
		if err := fsys.dev.WriteBlock(blockIdx, bounce[:]); err != nil {
			fsys.warn("write block failed", slog.Int("block", int(blk)), slog.String("err", err.Error()))
			break
		}
		written = hi - int(offset)
		if logical != lastLogical {
			blk = fsys.fat.get(int(blk))
		}
	}

	newEnd := offset + uint32(written)
	if newEnd > size {
		e.setSize(newEnd)
	}
	fh.offset += uint32(written)
	return written, nil
}

func (fsys *FS) tailOf(head uint16, length int) uint16 {
	if length == 0 {
		return eoc
	}
	blk, _ := fsys.walkToNth(head, length-1)
	return blk
}

func ceilDivU32(n, d uint32) uint32 {
	return (n + d - 1) / d
}
