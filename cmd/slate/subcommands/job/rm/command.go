package rm

import (
	"context"
	"log"

	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"
)

type Option struct {
	remove func(
		ctx context.Context,
		client srest.Client,
		jobId string,
	) error
}

func WithRemover(
	remove func(
		ctx context.Context,
		client srest.Client,
		jobId string,
	) error,
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.remove = remove
		return opt
	}
}

const ARG_JOBID = "JOB_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		remove: RunDeleteJob,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Delete Job for the specified Job Id.",
		struct{}{},
		flarc.Args{
			{
				Name:       ARG_JOBID,
				Required:   true,
				Repeatable: false,
				Help:       "Id of the Job to be deleted.",
			},
		},
		common.NewTask(Task(option.remove)),
	)
}

func Task(
	remove func(context.Context, srest.Client, string) error,
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		jobId := cl.Args()[ARG_JOBID][0]
		if err := remove(ctx, client, jobId); err != nil {
			return err
		}
		logger.Printf("deleted Job Id:%v", jobId)
		return nil
	}
}

func RunDeleteJob(ctx context.Context, client srest.Client, jobId string) error {
	return client.DeleteJob(ctx, jobId)
}
