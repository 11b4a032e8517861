package model

import (
	model_find "github.com/slate-ml/slate/cmd/slate/subcommands/model/find"
	model_register "github.com/slate-ml/slate/cmd/slate/subcommands/model/register"
	model_show "github.com/slate-ml/slate/cmd/slate/subcommands/model/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	register, err := model_register.New()
	if err != nil {
		return nil, err
	}
	show, err := model_show.New()
	if err != nil {
		return nil, err
	}
	find, err := model_find.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate Slate registered models.",
		struct{}{},
		flarc.WithSubcommand("register", register),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
	)
}
