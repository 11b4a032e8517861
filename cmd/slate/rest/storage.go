package rest

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/slate-ml/slate-api-types/storage"
	"github.com/slate-ml/slate/pkg/archive"
	kio "github.com/slate-ml/slate/pkg/io"
	"github.com/slate-ml/slate/pkg/utils"
	"github.com/slate-ml/slate/pkg/viz/store"
)

var (
	ErrChecksumUnmatch = errors.New("checksum unmatch")
)

// Progress reports an ongoing archive-and-upload operation.
type Progress[T any] interface {
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

	// Error returns error caused during archiving or uploading.
	Error() error

	// Result returns the result of the operation.
	//
	// # Returns
	//
	// - T: the result of the operation.
	//
	// - bool: true if the operation has been done.
	Result() (T, bool)

	// Done returns a channel which is closed when the whole operation is over.
	Done() <-chan struct{}

	// Sent returns a channel which is closed when the data is sent to the server.
	Sent() <-chan struct{}
}

type progress struct {
	p        archive.Progress
	e        error
	result   *storage.ObjectSummary
	resultOk bool
	done     chan struct{}
	sent     chan struct{}
}

func (p *progress) EstimatedTotalSize() int64 {
	return p.p.EstimatedTotalSize()
}

func (p *progress) ProgressedSize() int64 {
	return p.p.ProgressedSize()
}

func (p *progress) ProgressingFile() string {
	return p.p.ProgressingFile()
}

func (p *progress) Error() error {
	if err := p.p.Error(); err != nil {
		return err
	}
	return p.e
}

func (p *progress) Result() (*storage.ObjectSummary, bool) {
	return p.result, p.resultOk
}

func (p *progress) Done() <-chan struct{} {
	return p.done
}

func (p *progress) Sent() <-chan struct{} {
	return p.sent
}

func (c *client) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("storage"), nil)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		q := req.URL.Query()
		q.Add("prefix", prefix)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	summaries := make([]storage.ObjectSummary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &summaries,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (c *client) GetObject(ctx context.Context, key string, handler func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("storage", key), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("downloading %s is rejected by server (status code = %d)", key, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return err
	}

	chr := kio.NewMD5Reader(r)
	tr := kio.NewTriggerReader(chr)
	var hasherr error
	tr.OnEnd(func() {
		// the checksum trailer is optional. Small objects are served
		// without it; dataset archives carry it.
		serverChecksum := resp.Trailer.Get("x-checksum-md5")
		if serverChecksum == "" {
			return
		}

		actualChecksum := hex.EncodeToString(chr.Sum())
		if serverChecksum == actualChecksum {
			return
		}
		hasherr = fmt.Errorf(
			"%w: server sent: %s, calculated: %s",
			ErrChecksumUnmatch, serverChecksum, actualChecksum,
		)
	})

	if err := handler(tr); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		// drain rest of the stream.
		return err
	}

	return hasherr
}

type FileEntry struct {
	// Header is the header of the entry.
	Header tar.Header

	// Content of file.
	Body io.Reader
}

func (c *client) GetDataset(ctx context.Context, key string, handler func(FileEntry) error) error {
	return c.GetObject(ctx, key, func(r io.Reader) error {
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gzr.Close()

		tarr := tar.NewReader(gzr)
		for {
			hdr, err := tarr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			if err := handler(FileEntry{Header: *hdr, Body: tarr}); err != nil {
				return err
			}

			// drain rest of the entry.
			if _, err := io.Copy(io.Discard, tarr); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *client) PushDataset(ctx context.Context, source string, key string, dereference bool) Progress[*storage.ObjectSummary] {
	ctx, cancel := context.WithCancel(ctx)

	started := false
	r, w := io.Pipe()
	defer func() {
		if !started {
			r.Close()
			w.Close()
		}
	}()

	md5writer := kio.NewMD5Writer(w)
	gzwriter := gzip.NewWriter(md5writer)
	taropts := []archive.TarOption{}
	if dereference {
		taropts = append(taropts, archive.FollowSymlinks())
	}
	prog := &progress{
		sent: make(chan struct{}, 1),
		done: make(chan struct{}, 1),
		p:    archive.GoTar(ctx, source, gzwriter, taropts...),
	}

	treader := kio.NewTriggerReader(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apipath("storage", key), treader)
	if err != nil {
		cancel()
		prog.e = err
		return prog
	}
	treader.OnEnd(func() {
		req.Trailer.Add("x-checksum-md5", hex.EncodeToString(md5writer.Sum()))
		close(prog.sent)
	})

	req.Trailer = http.Header{}
	req.Header.Add("Content-Type", "application/tar+gzip")
	req.Header.Add("Transfer-Encoding", "chunked")
	req.Header.Add("Trailer", "x-checksum-md5")

	go func() {
		<-prog.p.Done()
		if err := prog.p.Error(); err != nil {
			cancel()
		}
		gzwriter.Close()
		w.Close()
	}()

	started = true
	go func() {
		defer close(prog.done)
		defer r.Close()

		resp, err := c.httpclient.Do(req)
		if err != nil {
			prog.e = err
			return
		}
		defer resp.Body.Close()

		res := &storage.ObjectSummary{}
		if err := unmarshalJsonResponse(
			resp, res,
			MessageFor{
				Status4xx: fmt.Sprintf("sending dataset is rejected by server (status code = %d)", resp.StatusCode),
				Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
			},
		); err != nil {
			prog.e = err
			return
		}

		prog.result = res
		prog.resultOk = true
	}()

	return prog
}

// ObjectStore adapts a Client to the visualizer's object store interface,
// so grids can be rendered straight from service storage.
func ObjectStore(c Client) store.Store {
	return objectStore{c: c}
}

type objectStore struct {
	c Client
}

func (s objectStore) List(ctx context.Context, prefix string) ([]string, error) {
	summaries, err := s.c.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := utils.Map(summaries, func(o storage.ObjectSummary) string {
		return o.Key
	})
	sort.Strings(keys)
	return keys, nil
}

func (s objectStore) Get(ctx context.Context, key string, handler func(io.Reader) error) error {
	return s.c.GetObject(ctx, key, handler)
}
