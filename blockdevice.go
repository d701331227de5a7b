package ecsfs

import (
	"errors"
	"os"
)

// BlockDevice is the block-level abstraction the filesystem mounts on top
// of. Implementations transfer exactly BlockSize bytes per call, indexed
// from 0. It plays the same role as the teacher library's BlockDevice
// interface, generalized from a variable sector size to the fixed
// BlockSize of this format.
type BlockDevice interface {
	// Open prepares the device backed by path for block I/O.
	Open(path string) error
	// Close releases any resources acquired by Open.
	Close() error
	// BlockCount reports the total number of BlockSize blocks available.
	BlockCount() (int, error)
	// ReadBlock reads block index idx into buf, which must be BlockSize bytes.
	ReadBlock(idx int, buf []byte) error
	// WriteBlock writes buf, which must be BlockSize bytes, to block index idx.
	WriteBlock(idx int, buf []byte) error
}

// FileBlockDevice is a BlockDevice backed by a host file, opened with
// Open and addressed at BlockSize granularity via ReadAt/WriteAt.
type FileBlockDevice struct {
	f      *os.File
	blocks int
}

var _ BlockDevice = (*FileBlockDevice)(nil)

// Open opens the host image file at path for reading and writing.
func (d *FileBlockDevice) Open(path string) error {
	if d.f != nil {
		return errors.New("ecsfs: device already open")
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	if fi.Size()%BlockSize != 0 {
		f.Close()
		return errors.New("ecsfs: image size is not a multiple of the block size")
	}
	d.f = f
	d.blocks = int(fi.Size() / BlockSize)
	return nil
}

// Close closes the underlying host file.
func (d *FileBlockDevice) Close() error {
	if d.f == nil {
		return errors.New("ecsfs: device not open")
	}
	err := d.f.Close()
	d.f = nil
	d.blocks = 0
	return err
}

// BlockCount reports the number of BlockSize blocks in the image.
func (d *FileBlockDevice) BlockCount() (int, error) {
	if d.f == nil {
		return 0, errors.New("ecsfs: device not open")
	}
	return d.blocks, nil
}

// ReadBlock reads block idx into buf.
func (d *FileBlockDevice) ReadBlock(idx int, buf []byte) error {
	if err := d.checkBounds(idx, len(buf)); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf[:BlockSize], int64(idx)*BlockSize)
	return err
}

// WriteBlock writes buf to block idx.
func (d *FileBlockDevice) WriteBlock(idx int, buf []byte) error {
	if err := d.checkBounds(idx, len(buf)); err != nil {
		return err
	}
	_, err := d.f.WriteAt(buf[:BlockSize], int64(idx)*BlockSize)
	return err
}

func (d *FileBlockDevice) checkBounds(idx, bufLen int) error {
	if d.f == nil {
		return errors.New("ecsfs: device not open")
	}
	if bufLen < BlockSize {
		return errors.New("ecsfs: buffer shorter than block size")
	}
	if idx < 0 || idx >= d.blocks {
		return errors.New("ecsfs: block index out of range")
	}
	return nil
}

// MemBlockDevice is an in-memory BlockDevice, grounded on the teacher
// library's BytesBlocks test fixture. It is useful for tests and for
// embedding prebuilt images without touching the host filesystem.
type MemBlockDevice struct {
	buf    []byte
	opened bool
}

var _ BlockDevice = (*MemBlockDevice)(nil)

// NewMemBlockDevice allocates an in-memory device of the given block count,
// pre-closed; call Open to "mount" it (Open on a MemBlockDevice ignores
// path and simply marks the device ready).
func NewMemBlockDevice(blocks int) *MemBlockDevice {
	return &MemBlockDevice{buf: make([]byte, blocks*BlockSize)}
}

func (d *MemBlockDevice) Open(path string) error {
	if d.opened {
		return errors.New("ecsfs: device already open")
	}
	d.opened = true
	return nil
}

func (d *MemBlockDevice) Close() error {
	if !d.opened {
		return errors.New("ecsfs: device not open")
	}
	d.opened = false
	return nil
}

func (d *MemBlockDevice) BlockCount() (int, error) {
	if !d.opened {
		return 0, errors.New("ecsfs: device not open")
	}
	return len(d.buf) / BlockSize, nil
}

func (d *MemBlockDevice) ReadBlock(idx int, buf []byte) error {
	if err := d.checkBounds(idx, len(buf)); err != nil {
		return err
	}
	copy(buf[:BlockSize], d.buf[idx*BlockSize:])
	return nil
}

func (d *MemBlockDevice) WriteBlock(idx int, buf []byte) error {
	if err := d.checkBounds(idx, len(buf)); err != nil {
		return err
	}
	copy(d.buf[idx*BlockSize:], buf[:BlockSize])
	return nil
}

func (d *MemBlockDevice) checkBounds(idx, bufLen int) error {
	if !d.opened {
		return errors.New("ecsfs: device not open")
	}
	if bufLen < BlockSize {
		return errors.New("ecsfs: buffer shorter than block size")
	}
	if idx < 0 || idx*BlockSize >= len(d.buf) {
		return errors.New("ecsfs: block index out of range")
	}
	return nil
}
