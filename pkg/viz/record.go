package viz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"path"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/slate-ml/slate-api-types/annotations"
	"github.com/slate-ml/slate/pkg/viz/store"
)

var (
	// ErrMalformedAnnotation is returned when an annotation object is not
	// valid JSON, or misses its required fields.
	ErrMalformedAnnotation = errors.New("malformed annotation")

	// ErrImageNotFound is returned when the image referenced by an
	// annotation record does not exist or is inaccessible.
	ErrImageNotFound = errors.New("image not found")

	// ErrImageDecode is returned when image bytes cannot be decoded
	// into a pixel grid.
	ErrImageDecode = errors.New("cannot decode image")
)

// Cell is one annotated image and its caption, placed at Index in a grid.
type Cell struct {
	Index   int
	Caption string
	Image   *image.RGBA
}

// Caption formats the caption of the index-th image in a grid.
//
// The index is zero-padded to at least 2 digits.
func Caption(index int, imageKey string) string {
	return fmt.Sprintf("[img-%02d] %s", index, imageKey)
}

// Load reads all annotation records under annotationPrefix,
// fetches and decodes the image each record points at (relative to
// imagePrefix), and draws the record's bounding boxes on it.
//
// Records are processed one by one, in the key order of the listing.
// The first failure stops the whole load:
// ErrMalformedAnnotation, ErrImageNotFound or ErrImageDecode,
// each wrapping the key of the offending object.
func Load(ctx context.Context, s store.Store, annotationPrefix, imagePrefix string) ([]Cell, error) {
	keys, err := s.List(ctx, annotationPrefix)
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(keys))
	for i, key := range keys {
		record, err := readRecord(ctx, s, key)
		if err != nil {
			return nil, err
		}

		imageKey := path.Join(imagePrefix, record.File)
		img, err := fetchImage(ctx, s, imageKey)
		if err != nil {
			return nil, err
		}

		Annotate(img, record.Boxes)

		cells = append(cells, Cell{
			Index:   i,
			Caption: Caption(i, imageKey),
			Image:   img,
		})
	}

	return cells, nil
}

func readRecord(ctx context.Context, s store.Store, key string) (annotations.Record, error) {
	record := annotations.Record{}

	var decodeErr error
	err := s.Get(ctx, key, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(&record); err != nil {
			decodeErr = err
			return err
		}
		return nil
	})

	if decodeErr != nil {
		return record, fmt.Errorf("%w: %s: %s", ErrMalformedAnnotation, key, decodeErr)
	}
	if err != nil {
		return record, err
	}
	return record, nil
}

func fetchImage(ctx context.Context, s store.Store, key string) (*image.RGBA, error) {
	var decoded image.Image
	var decodeErr error

	err := s.Get(ctx, key, func(r io.Reader) error {
		img, _, err := image.Decode(r)
		if err != nil {
			decodeErr = err
			return err
		}
		decoded = img
		return nil
	})

	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrImageDecode, key, decodeErr)
	}
	if err != nil {
		return nil, err
	}

	return toRGBA(decoded), nil
}
