package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	xerrors "github.com/slate-ml/slate/pkg/errors"
)

// ErrNotFound is returned when no object exists at the given key or prefix.
var ErrNotFound = errors.New("object not found")

// Store is a read interface over object storage.
//
// Keys are "/"-separated, like object store keys or relative file pathes.
type Store interface {
	// List returns keys of all objects under prefix.
	//
	// Keys are sorted lexicographically, so listing is deterministic
	// for a same set of objects.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get streams the object at key into handler.
	//
	// If handler returns an error, reading is stopped and the error is returned.
	Get(ctx context.Context, key string, handler func(io.Reader) error) error
}

// Local is a Store over a local directory tree.
//
// Keys are pathes relative to the root directory.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

var _ Store = &Local{}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	dir := filepath.Join(l.root, filepath.FromSlash(prefix))
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
		}
		return nil, xerrors.Wrap(err)
	}

	keys := []string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		keys = append(keys, path.Join(prefix, filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, xerrors.Wrap(err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (l *Local) Get(ctx context.Context, key string, handler func(io.Reader) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return xerrors.Wrap(err)
	}
	defer f.Close()

	return handler(f)
}
