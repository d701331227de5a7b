package ecsfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLayoutMatchesSpec(t *testing.T) {
	const dataBlocks = 10
	fatBlockCount := (dataBlocks*fatEntrySize + BlockSize - 1) / BlockSize
	rootDirBlock := fatBlockCount + 1
	dataStartBlock := rootDirBlock + 1
	totalBlocks := dataStartBlock + dataBlocks

	dev := NewMemBlockDevice(totalBlocks)
	var fm Formatter
	require.NoError(t, fm.Format(dev, "mem", dataBlocks, ""))

	require.NoError(t, dev.Open("mem"))
	defer dev.Close()

	var block0 [BlockSize]byte
	require.NoError(t, dev.ReadBlock(0, block0[:]))
	var sb superblock
	require.Equal(t, frOK, sb.decode(block0[:]))

	assert.EqualValues(t, totalBlocks, sb.totalBlocks)
	assert.EqualValues(t, rootDirBlock, sb.rootDirBlock)
	assert.EqualValues(t, dataStartBlock, sb.dataStartBlock)
	assert.EqualValues(t, dataBlocks, sb.dataBlockCount)
	assert.EqualValues(t, fatBlockCount, sb.fatBlockCount)

	var fatBlock [BlockSize]byte
	require.NoError(t, dev.ReadBlock(1, fatBlock[:]))
	fat := fatView{data: fatBlock[:]}
	assert.EqualValues(t, eoc, fat.get(0))
	assert.EqualValues(t, 0, fat.get(1))

	var dirBlock [BlockSize]byte
	require.NoError(t, dev.ReadBlock(rootDirBlock, dirBlock[:]))
	for i := 0; i < FileMaxCount; i++ {
		e := dirEntryAt(dirBlock[:], i)
		assert.True(t, e.empty())
		assert.EqualValues(t, eoc, e.firstBlock())
	}
}

func TestFormatRejectsTooFewDataBlocks(t *testing.T) {
	dev := NewMemBlockDevice(4)
	var fm Formatter
	assert.Error(t, fm.Format(dev, "mem", 0, ""))
}

func TestFormatRejectsMismatchedDeviceSize(t *testing.T) {
	dev := NewMemBlockDevice(4) // too small for 10 data blocks
	var fm Formatter
	assert.Error(t, fm.Format(dev, "mem", 10, ""))
}
