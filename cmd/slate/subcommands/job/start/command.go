package start

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	kargs "github.com/slate-ml/slate/pkg/utils/args"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
)

type Flag struct {
	File     string           `flag:"file" alias:"f" metavar:"FILE|-" help:"job spec yaml. When FILE is -, the spec is read from stdin."`
	Name     string           `flag:"name" metavar:"NAME" help:"name of the Job."`
	Image    string           `flag:"image" metavar:"image[:tag]" help:"training image of the Job."`
	Dataset  string           `flag:"dataset" metavar:"KEY" help:"key of the dataset archive in service storage."`
	Output   string           `flag:"output" metavar:"PREFIX" help:"storage prefix where the Job writes artifacts."`
	Param    *kargs.KeyValues `flag:"param" alias:"p" metavar:"KEY=VALUE..." help:"hyperparameter of the Job. Repeatable."`
	Resource *kargs.KeyValues `flag:"resource" metavar:"TYPE=QUANTITY..." help:"compute resource of the Job, like cpu=2 or memory=1Gi. Repeatable."`
}

type Option struct {
	start func(
		ctx context.Context,
		client srest.Client,
		spec jobs.Spec,
	) (jobs.Detail, error)
}

func WithStarter(
	start func(
		ctx context.Context,
		client srest.Client,
		spec jobs.Spec,
	) (jobs.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.start = start
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		start: RunStartJob,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Start a new training Job.",
		Flag{
			Param:    &kargs.KeyValues{},
			Resource: &kargs.KeyValues{},
		},
		flarc.Args{},
		common.NewTask(Task(option.start)),
		flarc.WithDescription(`
Start a new training Job on Slate.

The Job spec can be given as a yaml file (--file; - for stdin), as flags,
or both. Flags override the file.

Hyperparameters and resources found in the slateenv file are used as
defaults for every Job started from this project.

Example
-------

Starting a Job from flags:

	{{ .Command }} --name detector --image registry.example.com/trainer:v1 --dataset datasets/traffic.tar.gz -p epochs=10 --resource cpu=2

Starting a Job from file:

	{{ .Command }} --file ./job.yaml
`),
	)
}

func Task(
	start func(
		ctx context.Context,
		client srest.Client,
		spec jobs.Spec,
	) (jobs.Detail, error),
) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		spec := jobs.Spec{}
		if flags.File != "" {
			var content []byte
			if flags.File == "-" {
				buf, err := io.ReadAll(cl.Stdin())
				if err != nil {
					return fmt.Errorf("%w: failed to read stdin", err)
				}
				content = buf
			} else {
				buf, err := os.ReadFile(flags.File)
				if err != nil {
					return fmt.Errorf("%w: failed to read %s", err, flags.File)
				}
				content = buf
			}
			if err := yaml.Unmarshal(content, &spec); err != nil {
				return fmt.Errorf("%w: %s is not a job spec", err, flags.File)
			}
		}

		if err := mergeFlags(&spec, flags); err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}
		mergeEnv(&spec, slateEnv)

		if spec.Name == "" {
			return fmt.Errorf("%w: job name is required (--name or spec file)", flarc.ErrUsage)
		}
		if spec.Image.Repository == "" {
			return fmt.Errorf("%w: training image is required (--image or spec file)", flarc.ErrUsage)
		}
		if spec.DatasetKey == "" {
			return fmt.Errorf("%w: dataset key is required (--dataset or spec file)", flarc.ErrUsage)
		}

		started, err := start(ctx, client, spec)
		if err != nil {
			return err
		}
		logger.Printf("started Job Id:%s", started.JobId)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(started); err != nil {
			return err
		}
		return nil
	}
}

func mergeFlags(spec *jobs.Spec, flags Flag) error {
	if flags.Name != "" {
		spec.Name = flags.Name
	}
	if flags.Image != "" {
		if err := spec.Image.Parse(flags.Image); err != nil {
			return fmt.Errorf("--image %s: %s", flags.Image, err)
		}
	}
	if flags.Dataset != "" {
		spec.DatasetKey = flags.Dataset
	}
	if flags.Output != "" {
		spec.OutputPrefix = flags.Output
	}

	if flags.Param != nil && 0 < len(*flags.Param) {
		if spec.Hyperparameters == nil {
			spec.Hyperparameters = map[string]string{}
		}
		for key, value := range flags.Param.Map() {
			spec.Hyperparameters[key] = value
		}
	}

	if flags.Resource != nil && 0 < len(*flags.Resource) {
		if spec.Resources == nil {
			spec.Resources = jobs.Resources{}
		}
		for typ, expr := range flags.Resource.Map() {
			quantity, err := resource.ParseQuantity(expr)
			if err != nil {
				return fmt.Errorf("--resource %s=%s: %s", typ, expr, err)
			}
			spec.Resources[typ] = quantity
		}
	}

	return nil
}

// mergeEnv fills spec defaults from the slateenv file. It never overrides
// what the spec file or flags set.
func mergeEnv(spec *jobs.Spec, slateEnv env.SlateEnv) {
	for key, value := range slateEnv.Hyperparameters {
		if spec.Hyperparameters == nil {
			spec.Hyperparameters = map[string]string{}
		}
		if _, ok := spec.Hyperparameters[key]; !ok {
			spec.Hyperparameters[key] = value
		}
	}
	for typ, expr := range slateEnv.Resource {
		quantity, err := resource.ParseQuantity(expr)
		if err != nil {
			// broken defaults in slateenv are skipped
			continue
		}
		if spec.Resources == nil {
			spec.Resources = jobs.Resources{}
		}
		if _, ok := spec.Resources[typ]; !ok {
			spec.Resources[typ] = quantity
		}
	}
}

func RunStartJob(
	ctx context.Context, client srest.Client, spec jobs.Spec,
) (jobs.Detail, error) {
	return client.StartJob(ctx, spec)
}
