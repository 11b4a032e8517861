package archive_test

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/slate-ml/slate/pkg/archive"
)

func TestGoTar(t *testing.T) {
	t.Run("it archives a directory tree, in lexical order", func(t *testing.T) {
		root := t.TempDir()
		files := map[string][]byte{
			"b.txt":          []byte("content of b"),
			"a.txt":          []byte("content of a"),
			"nested/c.jsonl": []byte(`{"key": "c"}`),
		}
		for name, content := range files {
			p := filepath.Join(root, name)
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(p, content, 0o644); err != nil {
				t.Fatal(err)
			}
		}

		dest := bytes.NewBuffer(nil)
		prog := archive.GoTar(context.Background(), root, dest)
		<-prog.Done()

		if err := prog.Error(); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		wantTotal := int64(0)
		for _, content := range files {
			wantTotal += int64(len(content))
		}
		if prog.EstimatedTotalSize() != wantTotal {
			t.Errorf(
				"EstimatedTotalSize: (actual, expected) = (%d, %d)",
				prog.EstimatedTotalSize(), wantTotal,
			)
		}
		if prog.ProgressedSize() != wantTotal {
			t.Errorf(
				"ProgressedSize: (actual, expected) = (%d, %d)",
				prog.ProgressedSize(), wantTotal,
			)
		}

		gotNames := []string{}
		tr := tar.NewReader(dest)
		for {
			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			gotNames = append(gotNames, hdr.Name)

			if content, ok := files[hdr.Name]; ok {
				actual, err := io.ReadAll(tr)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(actual, content) {
					t.Errorf(
						"content of %s: (actual, expected) = (%s, %s)",
						hdr.Name, actual, content,
					)
				}
			}
		}

		expectedNames := []string{"a.txt", "b.txt", "nested", "nested/c.jsonl"}
		if len(gotNames) != len(expectedNames) {
			t.Fatalf("entries: (actual, expected) = (%v, %v)", gotNames, expectedNames)
		}
		for nth := range expectedNames {
			if gotNames[nth] != expectedNames[nth] {
				t.Errorf("entries: (actual, expected) = (%v, %v)", gotNames, expectedNames)
				break
			}
		}
	})

	t.Run("when root does not exist, it reports error", func(t *testing.T) {
		dest := bytes.NewBuffer(nil)
		prog := archive.GoTar(
			context.Background(), filepath.Join(t.TempDir(), "no-such-dir"), dest,
		)
		<-prog.Done()

		if prog.Error() == nil {
			t.Error("error is expected, but not")
		}
	})
}
