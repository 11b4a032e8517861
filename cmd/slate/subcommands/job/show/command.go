package show

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
	"github.com/youta-t/flarc"
)

type Option struct {
	showInfo ShowInfo
	showLog  ShowLog
}

type ShowInfo func(
	ctx context.Context,
	client srest.Client,
	jobId string,
) (jobs.Detail, error)

type ShowLog func(
	ctx context.Context,
	client srest.Client,
	jobId string,
	follow bool,
) error

type Flags struct {
	Log    bool `flag:"log" help:"display the log of that Job"`
	Follow bool `flag:"follow" alias:"f" help:"follow log while Job is running"`
}

func WithRunner(
	showInfo ShowInfo, showLog ShowLog,
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.showInfo = showInfo
		opt.showLog = showLog
		return opt
	}
}

const ARG_JOBID = "JOB_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		showInfo: RunShowJobForInfo,
		showLog:  RunShowJobForLog,
	}

	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the Job information for the specified Job Id.",
		Flags{
			Log:    false,
			Follow: false,
		},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Id of the Job to be shown",
			},
		},
		common.NewTask(Task(option.showInfo, option.showLog)),
		flarc.WithDescription(`
Return the Job information for the specified Job Id.

When --log is passed, it displays the log of that Job on the console.
`),
	)
}

func Task(showInfo ShowInfo, showLog ShowLog) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		jobId := cl.Args()[ARG_JOBID][0]

		flags := cl.Flags()
		if !flags.Log {
			job, err := showInfo(ctx, client, jobId)
			if err != nil {
				return fmt.Errorf("%w: Job Id:%s", err, jobId)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "    ")
			if err := enc.Encode(job); err != nil {
				logger.Panicf("fail to dump found Job")
			}
		} else {
			if err := showLog(ctx, client, jobId, flags.Follow); err != nil {
				return err
			}
		}
		return nil
	}
}

func RunShowJobForInfo(
	ctx context.Context, client srest.Client, jobId string,
) (jobs.Detail, error) {
	result, err := client.GetJob(ctx, jobId)
	if err != nil {
		return jobs.Detail{}, err
	}
	return result, nil
}

func RunShowJobForLog(
	ctx context.Context, client srest.Client, jobId string, follow bool,
) error {
	r, err := client.GetJobLog(ctx, jobId, follow)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(os.Stdout, r)
	if err != nil {
		return err
	}
	return nil
}
