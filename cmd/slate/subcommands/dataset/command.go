package dataset

import (
	dataset_pull "github.com/slate-ml/slate/cmd/slate/subcommands/dataset/pull"
	dataset_push "github.com/slate-ml/slate/cmd/slate/subcommands/dataset/push"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	push, err := dataset_push.New()
	if err != nil {
		return nil, err
	}
	pull, err := dataset_pull.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Push and pull Slate datasets.",
		struct{}{},
		flarc.WithSubcommand("push", push),
		flarc.WithSubcommand("pull", pull),
	)
}
