package annotations

import (
	"encoding/json"
	"fmt"

	"github.com/slate-ml/slate-api-types/internal/utils/cmp"
)

// BoundingBox is a rectangle region in image pixel coordinates,
// labeled with a semantic class.
//
// Left and Top are offsets from the image origin (top-left).
type BoundingBox struct {
	ClassId int `json:"class_id"`
	Left    int `json:"left"`
	Top     int `json:"top"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

func (b BoundingBox) Right() int {
	return b.Left + b.Width
}

func (b BoundingBox) Bottom() int {
	return b.Top + b.Height
}

func (b BoundingBox) Equal(o BoundingBox) bool {
	return b == o
}

// Record is a per-image annotation document.
//
// One Record describes the bounding-box labels of the image named by File.
type Record struct {
	// relative key of the image this Record describes.
	File string `json:"file"`

	// dimensions of the image, as provided. Not validated.
	ImageSize []int `json:"image_size,omitempty"`

	// bounding boxes on the image.
	Boxes []BoundingBox `json:"annotations"`

	// category descriptors. Opaque; passed through as-is.
	Categories []json.RawMessage `json:"categories,omitempty"`
}

func (r Record) Equal(o Record) bool {
	categoriesEq := len(r.Categories) == len(o.Categories)
	if categoriesEq {
		for nth := range r.Categories {
			if string(r.Categories[nth]) != string(o.Categories[nth]) {
				categoriesEq = false
				break
			}
		}
	}

	imageSizeEq := len(r.ImageSize) == len(o.ImageSize)
	if imageSizeEq {
		for nth := range r.ImageSize {
			if r.ImageSize[nth] != o.ImageSize[nth] {
				imageSizeEq = false
				break
			}
		}
	}

	return r.File == o.File &&
		imageSizeEq &&
		categoriesEq &&
		cmp.SliceEqual(r.Boxes, o.Boxes)
}

// implement encoding/json.Unmarshaller
//
// "file" and "annotations" are required. Other fields are optional.
func (r *Record) UnmarshalJSON(b []byte) error {
	f := new(struct {
		File       *string           `json:"file"`
		ImageSize  []int             `json:"image_size"`
		Boxes      *[]BoundingBox    `json:"annotations"`
		Categories []json.RawMessage `json:"categories"`
	})
	if err := json.Unmarshal(b, f); err != nil {
		return err
	}

	if f.File == nil {
		return fmt.Errorf(`required field missing: "file"`)
	}
	if f.Boxes == nil {
		return fmt.Errorf(`required field missing: "annotations"`)
	}

	r.File = *f.File
	r.ImageSize = f.ImageSize
	r.Boxes = *f.Boxes
	r.Categories = f.Categories

	return nil
}
