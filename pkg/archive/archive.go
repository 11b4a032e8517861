package archive

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Progress reports how far an asynchronous archiving task has gone.
type Progress interface {
	// EstimatedTotalSize returns the total size of files to be archived.
	//
	// This is estimated and not compressed size.
	EstimatedTotalSize() int64

	// ProgressedSize returns the size of archived files.
	//
	// This size is updated during archiving.
	//
	// This is raw (not compressed) size.
	ProgressedSize() int64

	// ProgressingFile returns the file name which is currently being archived.
	ProgressingFile() string

	// Error returns error caused during archiving.
	Error() error

	// Done returns a channel which is closed when the archiving task is over.
	Done() <-chan struct{}
}

type progress struct {
	total      int64
	progressed atomic.Int64
	file       atomic.Value // string
	err        error
	done       chan struct{}
}

func (p *progress) EstimatedTotalSize() int64 {
	return p.total
}

func (p *progress) ProgressedSize() int64 {
	return p.progressed.Load()
}

func (p *progress) ProgressingFile() string {
	f, _ := p.file.Load().(string)
	return f
}

func (p *progress) Error() error {
	return p.err
}

func (p *progress) Done() <-chan struct{} {
	return p.done
}

type taropt struct {
	followSymlinks bool
}

type TarOption func(*taropt) *taropt

// FollowSymlinks makes GoTar dereference symlinks and
// archive the contents the links point to.
//
// Otherwise, symlinks are archived as such.
func FollowSymlinks() TarOption {
	return func(o *taropt) *taropt {
		o.followSymlinks = true
		return o
	}
}

// GoTar archives files under root into dest as a tar stream, asynchronously.
//
// It starts a goroutine and returns Progress of the task immediately.
// Entry names in the archive are relative to root.
// Files are visited in lexical order, so the stream is deterministic
// for a same file tree.
func GoTar(ctx context.Context, root string, dest io.Writer, opts ...TarOption) Progress {
	opt := &taropt{}
	for _, o := range opts {
		opt = o(opt)
	}

	prog := &progress{done: make(chan struct{})}

	type entry struct {
		path string
		info fs.FileInfo
	}
	entries := []entry{}

	err := filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if opt.followSymlinks && (info.Mode()&fs.ModeSymlink != 0) {
			resolved, err := os.Stat(path)
			if err != nil {
				return err
			}
			info = resolved
		}
		entries = append(entries, entry{path: path, info: info})
		if info.Mode().IsRegular() {
			prog.total += info.Size()
		}
		return nil
	})
	if err != nil {
		prog.err = err
		close(prog.done)
		return prog
	}

	go func() {
		defer close(prog.done)

		tw := tar.NewWriter(dest)
		defer func() {
			if err := tw.Close(); err != nil && prog.err == nil {
				prog.err = err
			}
		}()

		for _, e := range entries {
			select {
			case <-ctx.Done():
				prog.err = ctx.Err()
				return
			default:
			}

			relpath, err := filepath.Rel(root, e.path)
			if err != nil {
				prog.err = err
				return
			}

			linkname := ""
			if e.info.Mode()&fs.ModeSymlink != 0 {
				if linkname, err = os.Readlink(e.path); err != nil {
					prog.err = err
					return
				}
			}

			hdr, err := tar.FileInfoHeader(e.info, linkname)
			if err != nil {
				prog.err = err
				return
			}
			hdr.Name = filepath.ToSlash(relpath)

			if err := tw.WriteHeader(hdr); err != nil {
				prog.err = err
				return
			}

			if !e.info.Mode().IsRegular() {
				continue
			}

			prog.file.Store(relpath)
			f, err := os.Open(e.path)
			if err != nil {
				prog.err = err
				return
			}

			written, err := io.Copy(tw, f)
			f.Close()
			prog.progressed.Add(written)
			if err != nil {
				prog.err = err
				return
			}
		}
	}()

	return prog
}
