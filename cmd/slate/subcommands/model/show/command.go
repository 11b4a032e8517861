package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/slate-ml/slate-api-types/models"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"
)

type Option struct {
	show func(
		ctx context.Context,
		client srest.Client,
		modelId string,
	) (models.Detail, error)
}

func WithShower(
	show func(
		ctx context.Context,
		client srest.Client,
		modelId string,
	) (models.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_MODELID = "MODEL_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		show: RunShowModel,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the model information for the specified model Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_MODELID, Required: true,
				Help: "Id of the model to be shown",
			},
		},
		common.NewTask(Task(option.show)),
	)
}

func Task(
	show func(
		ctx context.Context,
		client srest.Client,
		modelId string,
	) (models.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		modelId := cl.Args()[ARG_MODELID][0]

		model, err := show(ctx, client, modelId)
		if err != nil {
			return fmt.Errorf("%w: model Id:%s", err, modelId)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		if err := enc.Encode(model); err != nil {
			logger.Panicf("fail to dump found model")
		}
		return nil
	}
}

func RunShowModel(
	ctx context.Context, client srest.Client, modelId string,
) (models.Detail, error) {
	return client.GetModel(ctx, modelId)
}
