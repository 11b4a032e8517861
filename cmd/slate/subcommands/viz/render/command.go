package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/slate-ml/slate/pkg/viz"
	"github.com/slate-ml/slate/pkg/viz/store"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Columns int    `flag:"columns" alias:"c" metavar:"N" help:"number of columns in the grid."`
	Output  string `flag:"out" alias:"o" metavar:"FILE" help:"png file where the grid is written."`
	Local   bool   `flag:"local" help:"read annotations and images from local directories instead of Slate storage."`
}

type Option struct {
	render func(
		ctx context.Context,
		s store.Store,
		annotationPrefix string,
		imagePrefix string,
		columns int,
	) (image.Image, error)
}

func WithRenderer(
	render func(
		ctx context.Context,
		s store.Store,
		annotationPrefix string,
		imagePrefix string,
		columns int,
	) (image.Image, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.render = render
		return opt
	}
}

const (
	ARG_ANNOTATION_PREFIX = "ANNOTATION_PREFIX"
	ARG_IMAGE_PREFIX      = "IMAGE_PREFIX"
)

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		render: viz.RenderGrid,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Render annotated images into a captioned grid png.",
		Flags{
			Columns: viz.DefaultColumns,
			Output:  "grid.png",
		},
		flarc.Args{
			{
				Name: ARG_ANNOTATION_PREFIX, Required: true,
				Help: "storage prefix (or local directory, with --local) holding annotation json files",
			},
			{
				Name: ARG_IMAGE_PREFIX, Required: true,
				Help: "storage prefix (or local directory, with --local) holding the annotated images",
			},
		},
		common.NewTaskWithCommonFlag(Task(option.render)),
		flarc.WithDescription(`
Render a dataset sample into a single png.

For each annotation json found under ANNOTATION_PREFIX, the named image is
fetched from IMAGE_PREFIX, its bounding boxes are drawn, and all annotated
images are composed into a captioned grid, row by row.

Example
-------

Render annotations in Slate storage:

	{{ .Command }} datasets/traffic/annotations/ datasets/traffic/ -o sample.png

Render a local dataset before pushing it:

	{{ .Command }} --local ./data/annotations ./data/images -c 4
`),
	)
}

func Task(
	render func(
		ctx context.Context,
		s store.Store,
		annotationPrefix string,
		imagePrefix string,
		columns int,
	) (image.Image, error),
) common.TaskWithCommonFlag[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		annotationPrefix := cl.Args()[ARG_ANNOTATION_PREFIX][0]
		imagePrefix := cl.Args()[ARG_IMAGE_PREFIX][0]

		flags := cl.Flags()
		if flags.Columns <= 0 {
			return fmt.Errorf("%w: --columns should be positive", flarc.ErrUsage)
		}

		var s store.Store
		if flags.Local {
			s = store.NewLocal(".")
		} else {
			client, err := common.NewClient(commonFlag)
			if err != nil {
				return err
			}
			s = srest.ObjectStore(client)
		}

		grid, err := render(ctx, s, annotationPrefix, imagePrefix, flags.Columns)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(flags.Output, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(0666))
		if err != nil {
			return err
		}
		defer f.Close()

		if err := png.Encode(f, grid); err != nil {
			return err
		}
		logger.Printf("grid is written to %s", flags.Output)
		return nil
	}
}
