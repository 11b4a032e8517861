package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/slate-ml/slate-api-types/internal/utils/cmp"
	"github.com/slate-ml/slate-api-types/misc/rfctime"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Statuses of a training Job.
const (
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusStopping = "stopping"
	StatusStopped  = "stopped"
)

// Image is a container image reference for a training Job.
type Image struct {
	Repository string
	Tag        string
}

func (i *Image) Equal(o *Image) bool {
	if (i == nil) || (o == nil) {
		return (i == nil) && (o == nil)
	}
	return i.Repository == o.Repository &&
		i.Tag == o.Tag
}

// parse string as Image Tag, and update itself.
//
// this spec is based on docker image tag spec[^1].
//
// [^1]: https://docs.docker.com/engine/reference/commandline/tag/#description
func (i *Image) Parse(s string) error {
	// [<registry>[:<port>]/]<name>:<tag>

	ref, err := name.NewTag(s, name.WithDefaultRegistry(""))
	if err != nil {
		return err
	}

	i.Repository = ref.Repository.Name()
	i.Tag = ref.TagStr()
	return nil
}

func (i *Image) marshal() string {
	if i.Repository == "" && i.Tag == "" {
		return ""
	}
	return fmt.Sprintf(`%s:%s`, i.Repository, i.Tag)
}

func (i Image) MarshalJSON() ([]byte, error) {
	b := bytes.NewBufferString(`"`)
	b.WriteString(i.marshal())
	b.WriteString(`"`)
	return b.Bytes(), nil
}

func (i Image) MarshalYAML() (interface{}, error) {
	n := yaml.Node{
		Kind:  yaml.ScalarNode,
		Value: i.marshal(),
		Style: yaml.DoubleQuotedStyle,
	}
	return n, nil
}

func (i *Image) UnmarshalYAML(node *yaml.Node) error {
	expr := new(string)
	err := node.Decode(expr)
	if err != nil {
		return err
	}
	return i.Parse(*expr)
}

func (i *Image) UnmarshalJSON(b []byte) error {
	expr := new(string)
	err := json.Unmarshal(b, expr)
	if err != nil {
		return err
	}
	return i.Parse(*expr)
}

func (i *Image) String() string {
	return i.marshal()
}

// Resources are compute resource requests of a Job, by resource type.
type Resources map[string]resource.Quantity

func (r Resources) Equal(o Resources) bool {
	return cmp.MapEqual(r, o)
}

func (r Resources) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]resource.Quantity(r))
}

func (r Resources) MarshalYAML() (interface{}, error) {
	jsonMap := map[string]string{}
	jsonBytes, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(jsonBytes, &jsonMap)
	if err != nil {
		return nil, err
	}
	return jsonMap, nil
}

func (r *Resources) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}

	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := r.UnmarshalJSON(jsonBytes); err != nil {
		return err
	}

	return nil
}

func (r *Resources) UnmarshalJSON(b []byte) error {
	var m map[string]resource.Quantity
	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}
	*r = Resources(m)
	return nil
}

// Spec is what a user asks the service to train.
type Spec struct {
	Name            string            `json:"name" yaml:"name"`
	Image           Image             `json:"image" yaml:"image"`
	DatasetKey      string            `json:"datasetKey" yaml:"datasetKey"`
	OutputPrefix    string            `json:"outputPrefix,omitempty" yaml:"outputPrefix,omitempty"`
	Hyperparameters map[string]string `json:"hyperparameters,omitempty" yaml:"hyperparameters,omitempty"`
	Resources       Resources         `json:"resources,omitempty" yaml:"resources,omitempty"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		s.Image.Equal(&o.Image) &&
		s.DatasetKey == o.DatasetKey &&
		s.OutputPrefix == o.OutputPrefix &&
		maps.Equal(s.Hyperparameters, o.Hyperparameters) &&
		cmp.MapEqual(s.Resources, o.Resources)
}

type Exit struct {
	Code    uint8  `json:"code"`
	Message string `json:"message"`
}

func (e Exit) Equal(o Exit) bool {
	return e.Code == o.Code && e.Message == o.Message
}

type Summary struct {
	JobId     string          `json:"jobId"`
	Status    string          `json:"status"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
	Exit      *Exit           `json:"exit,omitempty"`
}

func (s Summary) Equal(o Summary) bool {

	exitEq := (s.Exit == nil && o.Exit == nil) ||
		(s.Exit != nil && o.Exit != nil && s.Exit.Equal(*o.Exit))

	return s.JobId == o.JobId &&
		exitEq &&
		s.Status == o.Status &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

type Detail struct {
	Summary
	// props in Summary will be flattened in json.
	//     see also: https://github.com/golang/go/issues/7230

	Spec Spec `json:"spec"`

	// key of the trained artifact in service storage. Set when the Job is done.
	ArtifactKey string `json:"artifactKey,omitempty"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		d.Spec.Equal(o.Spec) &&
		d.ArtifactKey == o.ArtifactKey
}
