package start_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slate-ml/slate-api-types/jobs"
	sprof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	kenv "github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/internal/commandline"
	job_start "github.com/slate-ml/slate/cmd/slate/subcommands/job/start"
	"github.com/slate-ml/slate/cmd/slate/subcommands/logger"
	kargs "github.com/slate-ml/slate/pkg/utils/args"
	"github.com/slate-ml/slate/pkg/utils/try"
	"github.com/youta-t/flarc"
	"k8s.io/apimachinery/pkg/api/resource"
)

func TestStartCommand(t *testing.T) {
	type when struct {
		flags    job_start.Flag
		stdin    string
		slateEnv kenv.SlateEnv
		detail   jobs.Detail
		err      error
	}

	type then struct {
		spec jobs.Spec
		err  error
	}

	mustImage := func(expr string) jobs.Image {
		i := jobs.Image{}
		if err := i.Parse(expr); err != nil {
			t.Fatal(err)
		}
		return i
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			profile := &sprof.SlateProfile{ApiRoot: "http://api.slate.invalid"}
			client := try.To(srest.NewClient(profile)).OrFatal(t)

			actualSpec := jobs.Spec{}
			started := false
			start := func(
				ctx context.Context,
				client srest.Client,
				spec jobs.Spec,
			) (jobs.Detail, error) {
				started = true
				actualSpec = spec
				return when.detail, when.err
			}

			testee := job_start.Task(start)

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				when.slateEnv,
				client,
				commandline.MockCommandline[job_start.Flag]{
					Fullname_: "slate job start",
					Stdin_:    strings.NewReader(when.stdin),
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    when.flags,
					Args_:     map[string][]string{},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Fatalf(
					"wrong result: (actual, expected) != (%v, %v)",
					err, then.err,
				)
			}
			if then.err != nil {
				if started && when.err == nil {
					t.Errorf("job is started unexpectedly: %+v", actualSpec)
				}
				return
			}
			if !actualSpec.Equal(then.spec) {
				t.Errorf(
					"wrong spec:\n- actual   : %+v\n- expected : %+v",
					actualSpec, then.spec,
				)
			}
		}
	}

	t.Run("when called with flags only, it builds the spec from flags", theory(
		when{
			flags: job_start.Flag{
				Name:    "detector",
				Image:   "registry.invalid/trainer:v1",
				Dataset: "datasets/traffic.tar.gz",
				Output:  "artifacts/detector",
				Param:   &kargs.KeyValues{{Key: "epochs", Value: "10"}},
				Resource: &kargs.KeyValues{
					{Key: "cpu", Value: "2"},
					{Key: "memory", Value: "1Gi"},
				},
			},
		},
		then{
			spec: jobs.Spec{
				Name:            "detector",
				Image:           mustImage("registry.invalid/trainer:v1"),
				DatasetKey:      "datasets/traffic.tar.gz",
				OutputPrefix:    "artifacts/detector",
				Hyperparameters: map[string]string{"epochs": "10"},
				Resources: jobs.Resources{
					"cpu":    resource.MustParse("2"),
					"memory": resource.MustParse("1Gi"),
				},
			},
		},
	))

	t.Run("when called with a spec on stdin, flags override it", theory(
		when{
			flags: job_start.Flag{
				File:  "-",
				Name:  "overridden",
				Param: &kargs.KeyValues{{Key: "epochs", Value: "20"}},
			},
			stdin: `
name: original
image: registry.invalid/trainer:v1
datasetKey: datasets/traffic.tar.gz
hyperparameters:
    epochs: "10"
    lr: "0.01"
`,
		},
		then{
			spec: jobs.Spec{
				Name:       "overridden",
				Image:      mustImage("registry.invalid/trainer:v1"),
				DatasetKey: "datasets/traffic.tar.gz",
				Hyperparameters: map[string]string{
					"epochs": "20",
					"lr":     "0.01",
				},
			},
		},
	))

	t.Run("when slateenv has defaults, they fill unset keys only", theory(
		when{
			flags: job_start.Flag{
				Name:    "detector",
				Image:   "registry.invalid/trainer:v1",
				Dataset: "datasets/traffic.tar.gz",
				Param:   &kargs.KeyValues{{Key: "epochs", Value: "10"}},
			},
			slateEnv: kenv.SlateEnv{
				Hyperparameters: map[string]string{
					"epochs": "999",
					"lr":     "0.01",
				},
				Resource: map[string]string{"cpu": "1"},
			},
		},
		then{
			spec: jobs.Spec{
				Name:       "detector",
				Image:      mustImage("registry.invalid/trainer:v1"),
				DatasetKey: "datasets/traffic.tar.gz",
				Hyperparameters: map[string]string{
					"epochs": "10",
					"lr":     "0.01",
				},
				Resources: jobs.Resources{
					"cpu": resource.MustParse("1"),
				},
			},
		},
	))

	t.Run("when name is missing, it should error as usage", theory(
		when{
			flags: job_start.Flag{
				Image:   "registry.invalid/trainer:v1",
				Dataset: "datasets/traffic.tar.gz",
			},
		},
		then{err: flarc.ErrUsage},
	))
	t.Run("when image is missing, it should error as usage", theory(
		when{
			flags: job_start.Flag{
				Name:    "detector",
				Dataset: "datasets/traffic.tar.gz",
			},
		},
		then{err: flarc.ErrUsage},
	))
	t.Run("when dataset is missing, it should error as usage", theory(
		when{
			flags: job_start.Flag{
				Name:  "detector",
				Image: "registry.invalid/trainer:v1",
			},
		},
		then{err: flarc.ErrUsage},
	))
	t.Run("when a resource quantity is broken, it should error as usage", theory(
		when{
			flags: job_start.Flag{
				Name:     "detector",
				Image:    "registry.invalid/trainer:v1",
				Dataset:  "datasets/traffic.tar.gz",
				Resource: &kargs.KeyValues{{Key: "cpu", Value: "a lot"}},
			},
		},
		then{err: flarc.ErrUsage},
	))

	{
		expectedError := errors.New("fake error")
		t.Run("when client causes error, it returns the error", theory(
			when{
				flags: job_start.Flag{
					Name:    "detector",
					Image:   "registry.invalid/trainer:v1",
					Dataset: "datasets/traffic.tar.gz",
				},
				err: expectedError,
			},
			then{err: expectedError},
		))
	}
}

func TestStartCommand_file(t *testing.T) {
	t.Run("when called with --file, it reads the spec from the file", func(t *testing.T) {
		profile := &sprof.SlateProfile{ApiRoot: "http://api.slate.invalid"}
		client := try.To(srest.NewClient(profile)).OrFatal(t)

		specfile := filepath.Join(t.TempDir(), "job.yaml")
		if err := os.WriteFile(specfile, []byte(`
name: detector
image: registry.invalid/trainer:v1
datasetKey: datasets/traffic.tar.gz
`), os.FileMode(0644)); err != nil {
			t.Fatal(err)
		}

		actualSpec := jobs.Spec{}
		start := func(
			ctx context.Context,
			client srest.Client,
			spec jobs.Spec,
		) (jobs.Detail, error) {
			actualSpec = spec
			return jobs.Detail{}, nil
		}

		testee := job_start.Task(start)

		err := testee(
			context.Background(),
			logger.Null(),
			*kenv.New(),
			client,
			commandline.MockCommandline[job_start.Flag]{
				Fullname_: "slate job start",
				Stdin_:    strings.NewReader(""),
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    job_start.Flag{File: specfile},
				Args_:     map[string][]string{},
			},
			[]any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if actualSpec.Name != "detector" ||
			actualSpec.DatasetKey != "datasets/traffic.tar.gz" {
			t.Errorf("wrong spec: %+v", actualSpec)
		}
	})
}
