package storage

import (
	"github.com/slate-ml/slate-api-types/misc/rfctime"
)

// ObjectSummary describes one object in service storage.
type ObjectSummary struct {
	Key       string          `json:"key"`
	Size      int64           `json:"size"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (s ObjectSummary) Equal(o ObjectSummary) bool {
	return s.Key == o.Key &&
		s.Size == o.Size &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}
