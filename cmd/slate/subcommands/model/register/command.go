package register

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/slate-ml/slate-api-types/models"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Flag struct {
	File     string `flag:"file" alias:"f" metavar:"FILE|-" help:"model spec yaml. When FILE is -, the spec is read from stdin."`
	Name     string `flag:"name" metavar:"NAME" help:"name of the model."`
	JobId    string `flag:"job" metavar:"JOB_ID" help:"Job which trained this model."`
	Artifact string `flag:"artifact" metavar:"KEY" help:"key of the model artifact in service storage."`
	Image    string `flag:"image" metavar:"image[:tag]" help:"container image serving this model."`
}

type Option struct {
	register func(
		ctx context.Context,
		client srest.Client,
		spec models.Spec,
	) (models.Detail, error)
}

func WithRegisterer(
	register func(
		ctx context.Context,
		client srest.Client,
		spec models.Spec,
	) (models.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.register = register
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		register: RunRegisterModel,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Register a trained model.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.register)),
		flarc.WithDescription(`
Register a trained model on Slate.

The model spec can be given as a yaml file (--file; - for stdin), as flags,
or both. Flags override the file.

Example
-------

Registering the artifact of a finished Job:

	{{ .Command }} --name detector --job job-1234 --artifact artifacts/job-1234/model.pt --image registry.example.com/serve:v1
`),
	)
}

func Task(
	register func(
		ctx context.Context,
		client srest.Client,
		spec models.Spec,
	) (models.Detail, error),
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

		spec := models.Spec{}
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
				return fmt.Errorf("%w: %s is not a model spec", err, flags.File)
			}
		}

		if flags.Name != "" {
			spec.Name = flags.Name
		}
		if flags.JobId != "" {
			spec.JobId = flags.JobId
		}
		if flags.Artifact != "" {
			spec.ArtifactKey = flags.Artifact
		}
		if flags.Image != "" {
			if err := spec.Image.Parse(flags.Image); err != nil {
				return fmt.Errorf("%w: --image %s: %s", flarc.ErrUsage, flags.Image, err)
			}
		}

		if spec.Name == "" {
			return fmt.Errorf("%w: model name is required (--name or spec file)", flarc.ErrUsage)
		}
		if spec.ArtifactKey == "" {
			return fmt.Errorf("%w: artifact key is required (--artifact or spec file)", flarc.ErrUsage)
		}

		registered, err := register(ctx, client, spec)
		if err != nil {
			return err
		}
		logger.Printf("registered model Id:%s", registered.ModelId)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(registered); err != nil {
			return err
		}
		return nil
	}
}

func RunRegisterModel(
	ctx context.Context, client srest.Client, spec models.Spec,
) (models.Detail, error) {
	return client.RegisterModel(ctx, spec)
}
