package jobs_test

import (
	"encoding/json"
	"testing"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/misc/rfctime"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
)

func TestImage(t *testing.T) {
	t.Run("it parses image expression with registry", func(t *testing.T) {
		i := new(jobs.Image)
		if err := i.Parse("registry.invalid:5000/trainer/mnist:v1.2"); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if i.Repository != "registry.invalid:5000/trainer/mnist" {
			t.Errorf("unexpected repository: %s", i.Repository)
		}
		if i.Tag != "v1.2" {
			t.Errorf("unexpected tag: %s", i.Tag)
		}
	})

	t.Run("it rejects expression without tag", func(t *testing.T) {
		i := new(jobs.Image)
		if err := i.Parse("trainer/mnist"); err == nil {
			t.Error("error is expected, but not")
		}
	})

	t.Run("it round-trips via json", func(t *testing.T) {
		expected := jobs.Image{Repository: "trainer/mnist", Tag: "v1.2"}

		b, err := json.Marshal(expected)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		actual := new(jobs.Image)
		if err := json.Unmarshal(b, actual); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if !actual.Equal(&expected) {
			t.Errorf("unmatch: (actual, expected) = (%s, %s)", actual, &expected)
		}
	})
}

func TestSpec_yaml(t *testing.T) {
	t.Run("it parses a job spec file", func(t *testing.T) {
		var actual jobs.Spec
		if err := yaml.Unmarshal([]byte(`
name: mnist-nightly
image: "trainer/mnist:v1.2"
datasetKey: datasets/mnist/v3.tar.gz
hyperparameters:
  epochs: "20"
  lr: "0.001"
resources:
  cpu: "2"
  memory: 4Gi
`), &actual); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		expected := jobs.Spec{
			Name:       "mnist-nightly",
			Image:      jobs.Image{Repository: "trainer/mnist", Tag: "v1.2"},
			DatasetKey: "datasets/mnist/v3.tar.gz",
			Hyperparameters: map[string]string{
				"epochs": "20", "lr": "0.001",
			},
			Resources: jobs.Resources{
				"cpu":    resource.MustParse("2"),
				"memory": resource.MustParse("4Gi"),
			},
		}

		if !actual.Equal(expected) {
			t.Errorf("unmatch: (actual, expected) = (%+v, %+v)", actual, expected)
		}
	})
}

func TestDetail_Equal(t *testing.T) {
	timestamp := func(t *testing.T, s string) rfctime.RFC3339 {
		t.Helper()
		ts, err := rfctime.ParseRFC3339DateTime(s)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}

	t.Run("details with same content are equal", func(t *testing.T) {
		a := jobs.Detail{
			Summary: jobs.Summary{
				JobId:     "job-1",
				Status:    jobs.StatusDone,
				UpdatedAt: timestamp(t, "2025-01-02T03:04:05+00:00"),
				Exit:      &jobs.Exit{Code: 0, Message: "completed"},
			},
			Spec: jobs.Spec{
				Name:  "mnist",
				Image: jobs.Image{Repository: "trainer/mnist", Tag: "v1"},
			},
			ArtifactKey: "artifacts/job-1/model.tar.gz",
		}
		b := jobs.Detail{
			Summary: jobs.Summary{
				JobId:     "job-1",
				Status:    jobs.StatusDone,
				UpdatedAt: timestamp(t, "2025-01-02T03:04:05+00:00"),
				Exit:      &jobs.Exit{Code: 0, Message: "completed"},
			},
			Spec: jobs.Spec{
				Name:  "mnist",
				Image: jobs.Image{Repository: "trainer/mnist", Tag: "v1"},
			},
			ArtifactKey: "artifacts/job-1/model.tar.gz",
		}

		if !a.Equal(b) {
			t.Errorf("should be equal: %+v, %+v", a, b)
		}
	})

	t.Run("details with different status are not equal", func(t *testing.T) {
		a := jobs.Detail{
			Summary: jobs.Summary{JobId: "job-1", Status: jobs.StatusDone},
		}
		b := jobs.Detail{
			Summary: jobs.Summary{JobId: "job-1", Status: jobs.StatusFailed},
		}

		if a.Equal(b) {
			t.Errorf("should not be equal: %+v, %+v", a, b)
		}
	})
}
