package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	kargs "github.com/slate-ml/slate/pkg/utils/args"
	ptr "github.com/slate-ml/slate/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Status   *kargs.Argslice             `flag:"status" alias:"s" metavar:"queued|running|done|failed..." help:"Find Jobs in this status. Repeatable."`
	Image    string                      `flag:"image" metavar:"image[:tag]" help:"Find Jobs started from this image."`
	Since    *kargs.OptionalLooseRFC3339 `flag:"since" help:"Find Jobs only updated at this time or later."`
	Duration *kargs.OptionalDuration     `flag:"duration" help:"Find Jobs only updated in '--duration' from '--since'."`
}

type Option struct {
	find func(
		ctx context.Context,
		client srest.Client,
		parameter srest.FindJobsParameter,
	) ([]jobs.Detail, error)
}

func WithFinder(
	find func(
		ctx context.Context,
		client srest.Client,
		parameter srest.FindJobsParameter,
	) ([]jobs.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.find = find
		return opt
	}
}

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{find: RunFindJobs}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Find Jobs that satisfy all specified conditions.",
		Flag{
			Status:   &kargs.Argslice{},
			Since:    &kargs.OptionalLooseRFC3339{},
			Duration: &kargs.OptionalDuration{},
		},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Find Jobs that satisfy all specified conditions.
If the same flag is passed multiple times, it will display Jobs that satisfy any of the values.

To limit results with a timespan, use '--since' and '--duration'.

'--since' limits a result to Jobs which have been updated at equal to or later than '--since'.
It is expected to be formatted in RFC3339, and it is also possible to omit sub-seconds,
seconds, minutes, hours and time offsets.
When the time offset is omitted, it is assumed the local time.
For example, "2024-10-31T01:23:45.987Z", "2024-10-31 01:23" or "2024-10-31+09:00".

'--duration' limits a result to Jobs which have been updated in '--duration' from '--since'.
It should be used in conjunction with '--since'.
For example, "300ms", "1.5h" or "2h45m". Units are required.

Example
-------

Finding Jobs with status "running" OR "queued":

	{{ .Command }} --status running --status queued
	{{ .Command }} -s running -s queued

	(both above are equivalent)

Scan over Jobs day by day:

	{{ .Command }} --duration 24h --since 2024-01-01
	{{ .Command }} --duration 24h --since 2024-01-02
	# And so on. There are no overlaps between days.
`),
	)
}

func Task(
	find func(
		ctx context.Context,
		client srest.Client,
		parameter srest.FindJobsParameter,
	) ([]jobs.Detail, error),
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

		status := ptr.SafeDeref(flags.Status)
		since := flags.Since.Time()
		duration := flags.Duration.Duration()

		if since == nil && duration != nil {
			return fmt.Errorf("%w: --duration must be together with --since", flarc.ErrUsage)
		}

		parameter := srest.FindJobsParameter{
			Status:   status,
			Image:    flags.Image,
			Since:    since,
			Duration: duration,
		}

		found, err := find(ctx, client, parameter)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found Jobs")
		}
		return nil
	}
}

func RunFindJobs(
	ctx context.Context,
	client srest.Client,
	parameter srest.FindJobsParameter,
) ([]jobs.Detail, error) {
	return client.FindJobs(ctx, parameter)
}
