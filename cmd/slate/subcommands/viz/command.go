package viz

import (
	viz_render "github.com/slate-ml/slate/cmd/slate/subcommands/viz/render"
	viz_serve "github.com/slate-ml/slate/cmd/slate/subcommands/viz/serve"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	render, err := viz_render.New()
	if err != nil {
		return nil, err
	}
	serve, err := viz_serve.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Visualize annotated datasets.",
		struct{}{},
		flarc.WithSubcommand("render", render),
		flarc.WithSubcommand("serve", serve),
	)
}
