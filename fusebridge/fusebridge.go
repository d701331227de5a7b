//go:build linux

// Package fusebridge exposes a mounted ecsfs.FS as a real host mountpoint
// via bazil.org/fuse, grounded on ostafen-digler's internal/fuse package.
// It is a pure consumer of the library's public API (Create, Delete, Ls,
// Open, Read, Write, Stat, Lseek, Close): it holds no FAT or allocator
// logic of its own, and the single root directory it presents has no
// nested directories, consistent with spec.md's Non-goals.
package fusebridge

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/filebox/ecsfs"
)

// Root is the single-level fuse.FS backed by a mounted *ecsfs.FS. Every
// request is serialized through mtx, since the underlying library assumes
// one caller at a time (spec.md §5).
type Root struct {
	mtx  sync.Mutex
	fsys *ecsfs.FS
}

var _ fusefs.FS = (*Root)(nil)

func (r *Root) Root() (fusefs.Node, error) {
	return &dir{root: r}, nil
}

type dir struct {
	root *Root
}

var (
	_ fusefs.Node               = (*dir)(nil)
	_ fusefs.HandleReadDirAller = (*dir)(nil)
	_ fusefs.NodeStringLookuper = (*dir)(nil)
	_ fusefs.NodeCreater        = (*dir)(nil)
	_ fusefs.NodeRemover        = (*dir)(nil)
)

func (*dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0755
	return nil
}

func (d *dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.root.mtx.Lock()
	defer d.root.mtx.Unlock()

	entries, err := d.root.fsys.Ls()
	if err != nil {
		return nil, toErrno(err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	out := make([]fuse.Dirent, len(entries))
	for i, e := range entries {
		out[i] = fuse.Dirent{Inode: uint64(i) + 1, Name: e.Name, Type: fuse.DT_File}
	}
	return out, nil
}

func (d *dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	d.root.mtx.Lock()
	defer d.root.mtx.Unlock()

	entries, err := d.root.fsys.Ls()
	if err != nil {
		return nil, toErrno(err)
	}
	for _, e := range entries {
		if e.Name == name {
			return &file{root: d.root, name: name}, nil
		}
	}
	return nil, fuse.ENOENT
}

func (d *dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	d.root.mtx.Lock()
	defer d.root.mtx.Unlock()

	if err := d.root.fsys.Create(req.Name); err != nil {
		return nil, nil, toErrno(err)
	}
	f := &file{root: d.root, name: req.Name}
	return f, f, nil
}

func (d *dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	d.root.mtx.Lock()
	defer d.root.mtx.Unlock()

	if err := d.root.fsys.Delete(req.Name); err != nil {
		return toErrno(err)
	}
	return nil
}

// file implements fs.Node, fs.Handle, fs.HandleReader, fs.HandleWriter, and
// fs.NodeSetattrer by opening/closing an ecsfs descriptor per request,
// since the library's fd table is cheap and the Non-goals exclude caching
// beyond the implicit one-block I/O unit.
type file struct {
	root *Root
	name string
}

var (
	_ fusefs.Node          = (*file)(nil)
	_ fusefs.Handle        = (*file)(nil)
	_ fusefs.HandleReader  = (*file)(nil)
	_ fusefs.HandleWriter  = (*file)(nil)
	_ fusefs.NodeSetattrer = (*file)(nil)
)

func (f *file) Attr(ctx context.Context, a *fuse.Attr) error {
	f.root.mtx.Lock()
	defer f.root.mtx.Unlock()

	fd, err := f.root.fsys.Open(f.name)
	if err != nil {
		return toErrno(err)
	}
	defer f.root.fsys.Close(fd)
	size, err := f.root.fsys.Stat(fd)
	if err != nil {
		return toErrno(err)
	}
	a.Mode = 0644
	a.Size = uint64(size)
	a.Mtime = time.Now()
	return nil
}

func (f *file) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	f.root.mtx.Lock()
	defer f.root.mtx.Unlock()

	fd, err := f.root.fsys.Open(f.name)
	if err != nil {
		return toErrno(err)
	}
	defer f.root.fsys.Close(fd)

	if err := f.root.fsys.Lseek(fd, uint32(req.Offset)); err != nil {
		resp.Data = nil
		return nil
	}
	buf := make([]byte, req.Size)
	n, err := f.root.fsys.Read(fd, buf)
	if err != nil {
		return toErrno(err)
	}
	resp.Data = buf[:n]
	return nil
}

func (f *file) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	f.root.mtx.Lock()
	defer f.root.mtx.Unlock()

	fd, err := f.root.fsys.Open(f.name)
	if err != nil {
		return toErrno(err)
	}
	defer f.root.fsys.Close(fd)

	if err := f.root.fsys.Lseek(fd, uint32(req.Offset)); err != nil {
		return toErrno(err)
	}
	n, err := f.root.fsys.Write(fd, req.Data)
	if err != nil {
		return toErrno(err)
	}
	resp.Size = n
	return nil
}

// Setattr changes no file. The library has no operation that shrinks a
// file's chain, so a size request below the current size is rejected with
// ENOTSUP rather than silently ignored; a size request at or above the
// current size, and any other attribute change, succeeds without effect.
func (f *file) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		f.root.mtx.Lock()
		fd, err := f.root.fsys.Open(f.name)
		if err != nil {
			f.root.mtx.Unlock()
			return toErrno(err)
		}
		size, _ := f.root.fsys.Stat(fd)
		f.root.fsys.Close(fd)
		f.root.mtx.Unlock()
		if req.Size < uint64(size) {
			return fuse.ENOTSUP
		}
	}
	return nil
}

func toErrno(err error) error {
	switch {
	case errors.Is(err, ecsfs.ErrNotFound):
		return fuse.ENOENT
	case errors.Is(err, ecsfs.ErrNameExists):
		return fuse.EEXIST
	case errors.Is(err, ecsfs.ErrTableFull), errors.Is(err, ecsfs.ErrDiskFull):
		return syscall.ENOSPC
	case errors.Is(err, ecsfs.ErrBusy):
		return syscall.EBUSY
	default:
		return err
	}
}

// Mount blocks serving FUSE requests against fsys at mountpoint until the
// mount is unmounted or receives SIGINT/SIGTERM.
func Mount(mountpoint string, fsys *ecsfs.FS) error {
	c, err := fuse.Mount(mountpoint)
	if err != nil {
		return err
	}
	defer c.Close()

	root := &Root{fsys: fsys}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		fuse.Unmount(mountpoint)
	}()

	srv := fusefs.New(c, nil)
	return srv.Serve(root)
}
