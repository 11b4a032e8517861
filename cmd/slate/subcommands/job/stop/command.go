package stop

import (
	"context"
	"log"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Fail bool `flag:"fail" alias:"x" help:"Abort Job and let it be failed. Otherwise it stops gracefully."`
}

type Option struct {
	stop func(
		ctx context.Context,
		client srest.Client,
		jobId string,
		fail bool,
	) (jobs.Detail, error)
}

func WithStopper(
	stop func(
		ctx context.Context,
		client srest.Client,
		jobId string,
		fail bool,
	) (jobs.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.stop = stop
		return opt
	}
}

const ARG_JOBID = "JOB_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		stop: RunStopJob,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Stop running Job.",
		Flag{
			Fail: false,
		},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Job Id to be stopped",
			},
		},
		common.NewTask(Task(option.stop)),
		flarc.WithDescription(`
Stop Job gracefully, keeping artifacts written so far.
If you want to stop Job and let it be failed, use --fail option.
`),
	)
}

func Task(
	stop func(
		ctx context.Context,
		client srest.Client,
		jobId string,
		fail bool,
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
		jobId := cl.Args()[ARG_JOBID][0]

		if _, err := stop(ctx, client, jobId, cl.Flags().Fail); err != nil {
			return err
		}

		if cl.Flags().Fail {
			logger.Printf("Job Id: %s is aborting.", jobId)
		} else {
			logger.Printf("Job Id: %s is stopping.", jobId)
		}
		return nil
	}
}

func RunStopJob(
	ctx context.Context, client srest.Client, jobId string, fail bool,
) (jobs.Detail, error) {
	if fail {
		return client.AbortJob(ctx, jobId)
	}
	return client.StopJob(ctx, jobId)
}
