package ecsfs

import "errors"

// Formatter lays out a fresh ECS150FS image on a BlockDevice. It fills in
// the teacher library's Formatter/FormatConfig shape (a stub for FAT32 in
// the teacher) with a complete implementation of spec.md §3's fixed
// 16-bit-FAT, single-root-directory layout.
type Formatter struct{}

// Format writes a valid, empty ECS150FS image of dataBlocks data blocks to
// bd, which must already be sized to hold exactly the resulting image
// (total_blocks = 1 + fat_block_count + 1 + dataBlocks blocks of
// BlockSize bytes each). label is currently unused; it exists so callers
// don't have to special-case a future volume-label field, mirroring the
// teacher Formatter's FormatConfig.Label.
func (Formatter) Format(bd BlockDevice, path string, dataBlocks int, label string) error {
	if dataBlocks < 1 {
		return errors.New("ecsfs: dataBlocks must be at least 1")
	}
	if dataBlocks > 0xFFFF {
		return errors.New("ecsfs: dataBlocks exceeds 16-bit FAT addressing range")
	}

	fatBlockCount := (dataBlocks*fatEntrySize + BlockSize - 1) / BlockSize
	rootDirBlock := fatBlockCount + 1
	dataStartBlock := rootDirBlock + 1
	totalBlocks := dataStartBlock + dataBlocks
	if totalBlocks > 0xFFFF {
		return errors.New("ecsfs: image too large to address with a 16-bit block count")
	}

	if err := bd.Open(path); err != nil {
		return err
	}
	defer bd.Close()

	nblocks, err := bd.BlockCount()
	if err != nil {
		return err
	}
	if nblocks != totalBlocks {
		return errors.New("ecsfs: device block count does not match the requested layout")
	}

	sb := superblock{
		totalBlocks:    uint16(totalBlocks),
		rootDirBlock:   uint16(rootDirBlock),
		dataStartBlock: uint16(dataStartBlock),
		dataBlockCount: uint16(dataBlocks),
		fatBlockCount:  uint8(fatBlockCount),
	}
	var block0 [BlockSize]byte
	sb.encode(block0[:])
	if err := bd.WriteBlock(0, block0[:]); err != nil {
		return err
	}

	var fatBlock [BlockSize]byte
	fat := fatView{data: fatBlock[:]}
	fat.set(0, eoc)
	if err := bd.WriteBlock(1, fatBlock[:]); err != nil {
		return err
	}
	clear(fatBlock[:])
	for i := 1; i < fatBlockCount; i++ {
		if err := bd.WriteBlock(1+i, fatBlock[:]); err != nil {
			return err
		}
	}

	// Every entry, used or not, must satisfy invariant 8: an empty slot's
	// first_data_block reads as EOC, not 0.
	var dirBlock [BlockSize]byte
	for i := 0; i < FileMaxCount; i++ {
		dirEntryAt(dirBlock[:], i).setFirstBlock(eoc)
	}
	if err := bd.WriteBlock(rootDirBlock, dirBlock[:]); err != nil {
		return err
	}

	return nil
}
