package io

import (
	"crypto/md5"
	"hash"
	"io"
)

// MD5Writer proxies an io.Writer, accumulating the md5 sum of everything written.
type MD5Writer struct {
	base io.Writer
	hash hash.Hash
}

func NewMD5Writer(w io.Writer) *MD5Writer {
	return &MD5Writer{base: w, hash: md5.New()}
}

func (w *MD5Writer) Write(p []byte) (int, error) {
	n, err := w.base.Write(p)
	if 0 < n {
		w.hash.Write(p[:n])
	}
	return n, err
}

// Sum returns the md5 sum of the bytes written so far.
func (w *MD5Writer) Sum() []byte {
	return w.hash.Sum(nil)
}

// MD5Reader proxies an io.Reader, accumulating the md5 sum of everything read.
type MD5Reader struct {
	base io.Reader
	hash hash.Hash
}

func NewMD5Reader(r io.Reader) *MD5Reader {
	return &MD5Reader{base: r, hash: md5.New()}
}

func (r *MD5Reader) Read(p []byte) (int, error) {
	n, err := r.base.Read(p)
	if 0 < n {
		r.hash.Write(p[:n])
	}
	return n, err
}

func (r *MD5Reader) Sum() []byte {
	return r.hash.Sum(nil)
}

// TriggerReader proxies an io.Reader and fires hooks once,
// when the base stream reaches its end.
type TriggerReader struct {
	base  io.Reader
	onEnd []func()
	fired bool
}

func NewTriggerReader(r io.Reader) *TriggerReader {
	return &TriggerReader{base: r}
}

// OnEnd registers a hook called when the base stream reaches io.EOF.
//
// Hooks are called at most once, in registration order.
func (tr *TriggerReader) OnEnd(hook func()) {
	tr.onEnd = append(tr.onEnd, hook)
}

func (tr *TriggerReader) Read(p []byte) (int, error) {
	n, err := tr.base.Read(p)
	if err == io.EOF && !tr.fired {
		tr.fired = true
		for _, hook := range tr.onEnd {
			hook()
		}
	}
	return n, err
}

type closeHooked struct {
	base   io.Reader
	hook   func()
	closed bool
}

func (ch *closeHooked) Read(p []byte) (int, error) {
	return ch.base.Read(p)
}

func (ch *closeHooked) Close() error {
	var err error
	if closer, ok := ch.base.(io.Closer); ok {
		err = closer.Close()
	}
	if !ch.closed {
		ch.closed = true
		if ch.hook != nil {
			ch.hook()
		}
	}
	return err
}

// WithCloseHook wraps r into io.ReadCloser whose Close calls hook.
//
// The hook is called only for the first Close.
// If r is io.Closer, Close is propagated to it.
func WithCloseHook(r io.Reader, hook func()) io.ReadCloser {
	return &closeHooked{base: r, hook: hook}
}
