package models

import (
	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/misc/rfctime"
)

// Spec is a request to register a trained model.
type Spec struct {
	// model name. Unique within the service, per user.
	Name string `json:"name" yaml:"name"`

	// Job which trained this model. Optional for models trained elsewhere.
	JobId string `json:"jobId,omitempty" yaml:"jobId,omitempty"`

	// key of the model artifact in service storage.
	ArtifactKey string `json:"artifactKey" yaml:"artifactKey"`

	// container image serving this model.
	Image jobs.Image `json:"image" yaml:"image"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		s.JobId == o.JobId &&
		s.ArtifactKey == o.ArtifactKey &&
		s.Image.Equal(&o.Image)
}

type Summary struct {
	ModelId   string          `json:"modelId"`
	Name      string          `json:"name"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.ModelId == o.ModelId &&
		s.Name == o.Name &&
		s.CreatedAt.Equal(o.CreatedAt)
}

type Detail struct {
	Summary
	// props in Summary will be flattened in json.

	Spec Spec `json:"spec"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) && d.Spec.Equal(o.Spec)
}
