package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/youta-t/flarc"

	pb "github.com/cheggaaa/pb/v3"
)

type Flags struct {
	Dereference bool `flag:"dereference" alias:"L" help:"Symlinks are followed and it stores target files of links. Otherwise symlinks are stored as such."`
}

type Option struct {
	progressOut io.Writer
	output      io.Writer
}

func WithProgressOut(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.progressOut = w
		return opt
	}
}

func WithOutput(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.output = w
		return opt
	}
}

const (
	ARG_SOURCE = "SOURCE"
	ARG_KEY    = "KEY"
)

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		progressOut: os.Stderr,
		output:      os.Stdout,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Push (upload) a dataset directory to Slate storage.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_SOURCE, Required: true,
				Help: "dataset directory to be pushed to Slate",
			},
			{
				Name: ARG_KEY, Required: true,
				Help: "storage key where the dataset archive is stored",
			},
		},
		common.NewTask(Task(option)),
		flarc.WithDescription(`
Archive a local directory as tar.gz and upload it to Slate storage.

The uploaded archive can be passed to Jobs as their dataset.

Example
-------

To push directory "./data/train" as "datasets/train.tar.gz":

	{{ .Command }} ./data/train datasets/train.tar.gz
`),
	)
}

func Task(option *Option) common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		slateEnv env.SlateEnv,
		client srest.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		source := cl.Args()[ARG_SOURCE][0]
		key := cl.Args()[ARG_KEY][0]

		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		prog := client.PushDataset(ctx, source, key, cl.Flags().Dereference)

		bar := pb.New64(prog.EstimatedTotalSize())
		bar.Set(pb.Bytes, true)
		bar.SetWriter(option.progressOut)
		if err := bar.Err(); err != nil {
			return err
		}

		bar.Start()
		logger.Printf("sending... %s\n", source)
		for {
			select {
			case <-time.NewTimer(1 * time.Second).C:
				bar.SetTotal(prog.EstimatedTotalSize())
				bar.SetCurrent(prog.ProgressedSize())
				bar.Set("prefix", ellipsis(prog.ProgressingFile(), 60)+":")
				continue
			case <-prog.Sent():
				bar.SetTotal(prog.EstimatedTotalSize())
				bar.SetCurrent(prog.ProgressedSize())
				bar.Set("prefix", "")
			}
			break
		}
		bar.Finish()
		select {
		case <-time.NewTimer(1 * time.Second).C:
			logger.Println("waiting server...")
		case <-prog.Done():
		}
		<-prog.Done()
		if err := prog.Error(); err != nil {
			return err
		}

		summary, ok := prog.Result()
		if !ok {
			return fmt.Errorf("failed to push %s", source)
		}

		logger.Printf("pushed: %s -> %s", source, summary.Key)

		buf, err := json.MarshalIndent(summary, "", "    ")
		if err != nil {
			return err
		}
		option.output.Write(buf)
		return nil
	}
}

func ellipsis(s string, length int) string {
	if len(s) <= length {
		return s
	}
	l := len(s)
	return "[...]" + s[l-length+5:]
}
