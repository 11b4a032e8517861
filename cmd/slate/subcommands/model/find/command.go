package find

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/slate-ml/slate-api-types/models"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	kargs "github.com/slate-ml/slate/pkg/utils/args"
	ptr "github.com/slate-ml/slate/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name *kargs.Argslice `flag:"name" alias:"n" metavar:"NAME..." help:"Find models with this name. Repeatable."`
}

type Option struct {
	find func(
		ctx context.Context,
		client srest.Client,
		names []string,
	) ([]models.Detail, error)
}

func WithFinder(
	find func(
		ctx context.Context,
		client srest.Client,
		names []string,
	) ([]models.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.find = find
		return opt
	}
}

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{find: RunFindModels}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Find registered models.",
		Flag{
			Name: &kargs.Argslice{},
		},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Find registered models.
If --name is passed multiple times, it will display models that have any of the names.
Without --name, all models are displayed.

Example
-------

Finding models named "detector" OR "classifier":

	{{ .Command }} --name detector --name classifier
`),
	)
}

func Task(
	find func(
		ctx context.Context,
		client srest.Client,
		names []string,
	) ([]models.Detail, error),
) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		names := ptr.SafeDeref(cl.Flags().Name)

		found, err := find(ctx, client, names)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found models")
		}
		return nil
	}
}

func RunFindModels(
	ctx context.Context, client srest.Client, names []string,
) ([]models.Detail, error) {
	return client.FindModels(ctx, names)
}
