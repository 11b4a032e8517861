package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	subdataset "github.com/slate-ml/slate/cmd/slate/subcommands/dataset"
	subinit "github.com/slate-ml/slate/cmd/slate/subcommands/init"
	subjob "github.com/slate-ml/slate/cmd/slate/subcommands/job"
	"github.com/slate-ml/slate/cmd/slate/subcommands/logger"
	submodel "github.com/slate-ml/slate/cmd/slate/subcommands/model"
	subver "github.com/slate-ml/slate/cmd/slate/subcommands/version"
	subviz "github.com/slate-ml/slate/cmd/slate/subcommands/viz"
	"github.com/slate-ml/slate/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	job := try.To(subjob.New()).OrFatal(logger)
	model := try.To(submodel.New()).OrFatal(logger)
	dataset := try.To(subdataset.New()).OrFatal(logger)
	viz := try.To(subviz.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	slate := try.To(
		flarc.NewCommandGroup(
			"Slate Commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("job", job),
			flarc.WithSubcommand("model", model),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("viz", viz),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, slate, flarc.WithHelp(true)))
}
