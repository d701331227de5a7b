package ecsfs

import "io"

// File is an io.ReadWriteCloser wrapping an open file descriptor, offered
// as ergonomic sugar over the fd-based FS methods, grounded on the
// teacher library's File type and its Read/Write/Close methods.
type File struct {
	fsys *FS
	fd   int
}

var (
	_ io.Reader   = (*File)(nil)
	_ io.Writer   = (*File)(nil)
	_ io.Closer   = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)

// OpenFile opens name on fsys and returns a File wrapping its descriptor.
func (fsys *FS) OpenFile(name string) (*File, error) {
	fd, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{fsys: fsys, fd: fd}, nil
}

// Read implements io.Reader. It returns io.EOF once the file's current
// offset is at or past its size, matching the teacher library's Read
// semantics (a zero-length short read plus io.EOF, rather than a bare 0).
func (f *File) Read(buf []byte) (int, error) {
	n, err := f.fsys.Read(f.fd, buf)
	if err != nil {
		return n, err
	}
	if n == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt implements io.ReaderAt without disturbing the file's offset.
func (f *File) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off > int64(^uint32(0)) {
		return 0, frBadArgument
	}
	fh, err := f.fsys.handle(f.fd)
	if err != nil {
		return 0, err
	}
	prev := fh.offset
	defer func() { fh.offset = prev }()
	if err := f.fsys.Lseek(f.fd, uint32(off)); err != nil {
		return 0, err
	}
	n, err := f.fsys.Read(f.fd, buf)
	if err == nil && n < len(buf) {
		return n, io.EOF
	}
	return n, err
}

// Write implements io.Writer.
func (f *File) Write(buf []byte) (int, error) {
	return f.fsys.Write(f.fd, buf)
}

// Close implements io.Closer.
func (f *File) Close() error {
	return f.fsys.Close(f.fd)
}

// Stat returns the file's current size in bytes.
func (f *File) Stat() (uint32, error) {
	return f.fsys.Stat(f.fd)
}

// Seek implements a subset of io.Seeker: only io.SeekStart is supported,
// matching spec.md's lseek(fd, offset) contract (no SEEK_CUR/SEEK_END).
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart || offset < 0 || offset > int64(^uint32(0)) {
		return 0, frBadArgument
	}
	if err := f.fsys.Lseek(f.fd, uint32(offset)); err != nil {
		return 0, err
	}
	return offset, nil
}
