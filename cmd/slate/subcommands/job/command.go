package job

import (
	job_find "github.com/slate-ml/slate/cmd/slate/subcommands/job/find"
	job_rm "github.com/slate-ml/slate/cmd/slate/subcommands/job/rm"
	job_show "github.com/slate-ml/slate/cmd/slate/subcommands/job/show"
	job_start "github.com/slate-ml/slate/cmd/slate/subcommands/job/start"
	job_stop "github.com/slate-ml/slate/cmd/slate/subcommands/job/stop"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	start, err := job_start.New()
	if err != nil {
		return nil, err
	}
	show, err := job_show.New()
	if err != nil {
		return nil, err
	}
	find, err := job_find.New()
	if err != nil {
		return nil, err
	}
	stop, err := job_stop.New()
	if err != nil {
		return nil, err
	}
	rm, err := job_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate Slate training Jobs.",
		struct{}{},
		flarc.WithSubcommand("start", start),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("stop", stop),
		flarc.WithSubcommand("rm", rm),
	)
}
