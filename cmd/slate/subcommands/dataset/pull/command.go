package pull

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	kpath "github.com/slate-ml/slate/pkg/utils/path"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Extract bool `flag:"extract" alias:"x" help:"extract files from tar.gz archive"`
}

type Option struct {
	progressOutput io.Writer
	defaultOutput  io.Writer
}

func WithProgressOutput(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.progressOutput = w
		return opt
	}
}

func WithOutput(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.defaultOutput = w
		return opt
	}
}

const (
	ARG_KEY  = "KEY"
	ARG_DEST = "DEST"
)

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		progressOutput: os.Stderr,
		defaultOutput:  os.Stdout,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Download a dataset archive from Slate storage to your local filesystem.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_KEY, Required: true,
				Help: "storage key of the dataset archive",
			},
			{
				Name: ARG_DEST, Required: false,
				Help: `
directory where the downloaded dataset will be located at.
If the directory does not exist, it will be created.
If you set "-", the archive will be written to stdout (not applicable with -x).
Default: current directory ".".
`,
			},
		},
		common.NewTask(Task(option)),
		flarc.WithDescription(`
Download a dataset archive from Slate storage.

Example
-------

Pull "datasets/train.tar.gz" as "./train.tar.gz":

	{{ .Command }} datasets/train.tar.gz

Pull "datasets/train.tar.gz" into "./train" directory, and extract it:

	{{ .Command }} -x datasets/train.tar.gz

Pull to stdout (-x is not allowed):

	{{ .Command }} datasets/train.tar.gz -
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
		key := cl.Args()[ARG_KEY][0]

		dest := "."
		if args := cl.Args()[ARG_DEST]; 0 < len(args) {
			dest = args[0]
		}

		writeDefault := dest == "-"

		var err error
		if !writeDefault {
			dest, err = kpath.Resolve(dest)
			if err != nil {
				return fmt.Errorf("path resolving error for '%s': %w", dest, err)
			}
			dest = filepath.Join(filepath.Clean(dest), archiveName(key, cl.Flags().Extract))
		}

		if !cl.Flags().Extract {
			err = client.GetObject(ctx, key, func(r io.Reader) error {
				if writeDefault {
					_, err := io.Copy(option.defaultOutput, r)
					return err
				}

				d := filepath.Dir(dest)
				if err := os.MkdirAll(d, os.FileMode(0777)); err != nil {
					return err
				}
				f, err := os.OpenFile(dest, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(0666))
				if err != nil {
					return err
				}
				defer f.Close()

				bar := noBar.New(-1)
				bar.SetWriter(option.progressOutput)
				bar.Set("prefix", fmt.Sprintf("Downloading to %s:", ellipsis(dest, 60)))
				bar.Start()
				w := bar.NewProxyWriter(f)
				defer w.Close()
				if _, err := io.Copy(w, r); err != nil {
					return err
				}
				return nil
			})
		} else if writeDefault {
			return fmt.Errorf("%w: cannot extract dataset to stdout (-)", flarc.ErrUsage)
		} else {
			bar := noBar.New(-1)
			bar.SetWriter(option.progressOutput)
			bar.Start()

			err = client.GetDataset(ctx, key, func(fe srest.FileEntry) error {
				fdest := filepath.Join(dest, fe.Header.Name)
				d := filepath.Dir(fdest)
				if err := os.MkdirAll(d, os.FileMode(0777)); err != nil {
					return err
				}
				if fe.Header.Typeflag == tar.TypeSymlink {
					return os.Symlink(fe.Header.Linkname, fdest)
				}

				f, err := os.OpenFile(fdest, os.O_CREATE|os.O_RDWR|os.O_TRUNC, fe.Header.FileInfo().Mode())
				if err != nil {
					return err
				}
				defer f.Close()
				bar.Set("prefix", fmt.Sprintf("extracting: %s into %s: ", ellipsis(fe.Header.Name, 20), ellipsis(dest, 60)))

				w := bar.NewProxyWriter(f) // do not close. won't Finish the bar here.
				if _, err := io.Copy(w, fe.Body); err != nil {
					return err
				}

				return nil
			})
			bar.Set("prefix", "done.: ")
			bar.Finish()
		}

		if errors.Is(err, srest.ErrChecksumUnmatch) {
			return errors.New("[WARN] checksum unmatch: Your dataset is saved, but it may be corrupted")
		}

		return err
	}
}

const noBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{with string . "suffix"}} {{.}}{{end}}`

// archiveName derives the local name from the storage key.
// When extracting, the archive suffix is stripped to name the directory.
func archiveName(key string, extract bool) string {
	name := filepath.Base(key)
	if !extract {
		if !strings.HasSuffix(name, ".tar.gz") {
			name = name + ".tar.gz"
		}
		return name
	}
	name = strings.TrimSuffix(name, ".tar.gz")
	name = strings.TrimSuffix(name, ".tgz")
	return name
}

func ellipsis(s string, length int) string {
	if len(s) <= length {
		return s
	}

	l := len(s)
	return "[...]" + s[l-length+5:]
}
