package ecsfs

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 — empty-read.
func TestScenarioEmptyRead(t *testing.T) {
	fsys := newTestFS(t, 16)
	require.NoError(t, fsys.Create("a"))
	fd, err := fsys.Open("a")
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := fsys.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Unmount())
}

// S2 — cross-block write.
func TestScenarioCrossBlockWrite(t *testing.T) {
	fsys := newTestFS(t, 16)
	require.NoError(t, fsys.Create("b"))
	fd, err := fsys.Open("b")
	require.NoError(t, err)

	pattern := bytes.Repeat([]byte{0xAB}, 5000)
	n, err := fsys.Write(fd, pattern)
	require.NoError(t, err)
	require.Equal(t, 5000, n)

	size, err := fsys.Stat(fd)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, size)

	entries, _ := fsys.Ls()
	assert.Equal(t, 2, fsys.chainLength(entries[0].FirstBlock))

	require.NoError(t, fsys.Lseek(fd, 0))
	out := make([]byte, 5000)
	n, err = fsys.Read(fd, out)
	require.NoError(t, err)
	require.Equal(t, 5000, n)
	assert.Equal(t, pattern, out)
}

// S3 — partial overwrite, starting from the file state S2 writes.
func TestScenarioPartialOverwrite(t *testing.T) {
	fsys := newTestFS(t, 16)
	require.NoError(t, fsys.Create("b"))
	fd, err := fsys.Open("b")
	require.NoError(t, err)
	pattern := bytes.Repeat([]byte{0xAB}, 5000)
	_, err = fsys.Write(fd, pattern)
	require.NoError(t, err)

	require.NoError(t, fsys.Lseek(fd, 4090))
	n, err := fsys.Write(fd, []byte("HELLO!"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	size, err := fsys.Stat(fd)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, size)

	require.NoError(t, fsys.Lseek(fd, 4088))
	out := make([]byte, 10)
	n, err = fsys.Read(fd, out)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	assert.Equal(t, []byte{0xAB, 0xAB}, out[:2])
	assert.Equal(t, []byte("HELLO!"), out[2:8])
}

// S4 — disk full. data_block_count=4 means 3 allocatable data blocks: FAT
// entry/data block 0 is always reserved (spec.md §3 invariant 4), so "c"
// can only claim the remaining 3.
func TestScenarioDiskFull(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("c"))
	fdC, err := fsys.Open("c")
	require.NoError(t, err)
	n, err := fsys.Write(fdC, bytes.Repeat([]byte{1}, 3*BlockSize))
	require.NoError(t, err)
	require.Equal(t, 3*BlockSize, n)

	require.NoError(t, fsys.Create("d"))
	fdD, err := fsys.Open("d")
	require.NoError(t, err)
	n, err = fsys.Write(fdD, bytes.Repeat([]byte{2}, BlockSize))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	size, err := fsys.Stat(fdD)
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)
}

// S5 — delete reclaims, then reuse.
func TestScenarioDeleteReclaims(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("c"))
	fdC, _ := fsys.Open("c")
	fsys.Write(fdC, bytes.Repeat([]byte{1}, 3*BlockSize))
	require.NoError(t, fsys.Close(fdC))

	require.NoError(t, fsys.Delete("c"))
	info, err := fsys.Info()
	require.NoError(t, err)
	assert.Equal(t, 3, info.FreeFATEntries)

	require.NoError(t, fsys.Create("c2"))
	fd2, err := fsys.Open("c2")
	require.NoError(t, err)
	n, err := fsys.Write(fd2, bytes.Repeat([]byte{3}, 3*BlockSize))
	require.NoError(t, err)
	assert.Equal(t, 3*BlockSize, n)
}

// S6 — busy delete.
func TestScenarioBusyDelete(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("e"))
	fd, err := fsys.Open("e")
	require.NoError(t, err)

	assert.ErrorIs(t, fsys.Delete("e"), ErrBusy)

	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Delete("e"))
}

func TestOpenTableFullAt33(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("only"))
	var fds [OpenMaxCount]int
	for i := 0; i < OpenMaxCount; i++ {
		fd, err := fsys.Open("only")
		require.NoError(t, err)
		fds[i] = fd
	}
	_, err := fsys.Open("only")
	assert.ErrorIs(t, err, ErrTableFull)
	for _, fd := range fds {
		require.NoError(t, fsys.Close(fd))
	}
}

func TestLseekRejectsPastSize(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("f"))
	fd, err := fsys.Open("f")
	require.NoError(t, err)
	assert.ErrorIs(t, fsys.Lseek(fd, 1), ErrBadArgument)
	require.NoError(t, fsys.Lseek(fd, 0))
}

func TestWriteAtExactSizeExtendsAndReadsEmptyAtNewEOF(t *testing.T) {
	fsys := newTestFS(t, 4)
	require.NoError(t, fsys.Create("g"))
	fd, err := fsys.Open("g")
	require.NoError(t, err)

	n, err := fsys.Write(fd, []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, fsys.Lseek(fd, 3))
	n, err = fsys.Write(fd, []byte("def"))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	size, err := fsys.Stat(fd)
	require.NoError(t, err)
	assert.EqualValues(t, 6, size)

	require.NoError(t, fsys.Lseek(fd, 6))
	buf := make([]byte, 10)
	n, err = fsys.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInvalidDescriptorOperations(t *testing.T) {
	fsys := newTestFS(t, 4)
	_, err := fsys.Stat(-1)
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = fsys.Stat(OpenMaxCount)
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = fsys.Read(5, make([]byte, 1))
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = fsys.Write(5, make([]byte, 1))
	assert.ErrorIs(t, err, ErrBadArgument)
	assert.ErrorIs(t, fsys.Close(5), ErrBadArgument)
}

// Invariant 1 & 2: every logical block resolves in range and chains don't alias.
func TestChainsDisjointAndInRange(t *testing.T) {
	fsys := newTestFS(t, 8)
	require.NoError(t, fsys.Create("x"))
	require.NoError(t, fsys.Create("y"))
	fx, _ := fsys.Open("x")
	fy, _ := fsys.Open("y")
	fsys.Write(fx, bytes.Repeat([]byte{1}, 3*BlockSize))
	fsys.Write(fy, bytes.Repeat([]byte{2}, 3*BlockSize))

	seen := map[uint16]string{}
	entries, _ := fsys.Ls()
	for _, e := range entries {
		length := fsys.chainLength(e.FirstBlock)
		blk := e.FirstBlock
		for i := 0; i < length; i++ {
			assert.GreaterOrEqual(t, int(blk), 1)
			assert.Less(t, int(blk), int(fsys.sb.dataBlockCount))
			if owner, ok := seen[blk]; ok {
				t.Fatalf("block %d aliased between %s and %s", blk, owner, e.Name)
			}
			seen[blk] = e.Name
			blk = fsys.fat.get(int(blk))
		}
	}
}

// Invariant 4: free entries + chain lengths account for every usable block.
func TestFreeCountPlusChainLengthsIsExhaustive(t *testing.T) {
	fsys := newTestFS(t, 8)
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("f%d", i)
		require.NoError(t, fsys.Create(name))
		fd, _ := fsys.Open(name)
		fsys.Write(fd, bytes.Repeat([]byte{byte(i)}, (i+1)*BlockSize))
	}
	info, err := fsys.Info()
	require.NoError(t, err)

	total := info.FreeFATEntries
	entries, _ := fsys.Ls()
	for _, e := range entries {
		total += fsys.chainLength(e.FirstBlock)
	}
	assert.Equal(t, int(fsys.sb.dataBlockCount)-1, total)
}
