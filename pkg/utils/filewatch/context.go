package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context that is canceled when one of the
// targets is modified (written, created, removed, or renamed).
//
// # Args
//
// - ctx: parent context
//
// - targetPath: files or directories to be watched
//
// # Returns
//
// - context.Context: canceled when one of targets is modified.
// The cancel cause names the modified path.
//
// - func(): cancel function
//
// - error: error caused when it fails to start watching.
// On error, both the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetPath ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			}
		}
	}()

	for _, f := range targetPath {
		if err := w.Add(f); err != nil {
			cancel(err)
			return nil, nil, err
		}
	}
	return cctx, func() { cancel(nil) }, nil
}
