package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/subcommands/common"
	"github.com/slate-ml/slate/pkg/utils/filewatch"
	"github.com/slate-ml/slate/pkg/viz"
	"github.com/slate-ml/slate/pkg/viz/store"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Port    int  `flag:"port" alias:"p" metavar:"PORT" help:"port the server listens on."`
	Columns int  `flag:"columns" alias:"c" metavar:"N" help:"number of columns in the grid."`
	Local   bool `flag:"local" help:"read annotations and images from local directories instead of Slate storage."`
	Watch   bool `flag:"watch" help:"with --local, quit when the annotation directory is modified."`
}

const (
	ARG_ANNOTATION_PREFIX = "ANNOTATION_PREFIX"
	ARG_IMAGE_PREFIX      = "IMAGE_PREFIX"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Serve the annotation grid over HTTP.",
		Flags{
			Port:    8080,
			Columns: viz.DefaultColumns,
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
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Start a HTTP server rendering the annotation grid.

GET /grid responds with a png, rendered from the current annotations at
each request. Point a browser at it while curating a dataset.

With --local --watch, the server quits when files under ANNOTATION_PREFIX
change, so a wrapper script can restart it.

Example
-------

	{{ .Command }} --local --watch ./data/annotations ./data/images
	{{ .Command }} -p 3000 datasets/traffic/annotations/ datasets/traffic/
`),
	)
}

func Task() common.TaskWithCommonFlag[Flags] {
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
		if flags.Watch && !flags.Local {
			return fmt.Errorf("%w: --watch needs --local", flarc.ErrUsage)
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

		if flags.Watch {
			wctx, cancel, err := filewatch.UntilModifyContext(ctx, annotationPrefix)
			if err != nil {
				return fmt.Errorf("%w: can not watch %s", err, annotationPrefix)
			}
			defer cancel()
			ctx = wctx
		}

		e := echo.New()
		e.HideBanner = true
		e.GET("/grid", func(c echo.Context) error {
			grid, err := viz.RenderGrid(
				c.Request().Context(), s, annotationPrefix, imagePrefix, flags.Columns,
			)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			buf := new(bytes.Buffer)
			if err := png.Encode(buf, grid); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			return c.Blob(http.StatusOK, "image/png", buf.Bytes())
		})

		context.AfterFunc(ctx, func() {
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				logger.Printf("error on shutdown: %s", err)
			}
		})

		logger.Printf("serving grid at http://localhost:%d/grid", flags.Port)
		if err := e.Start(fmt.Sprintf(":%d", flags.Port)); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
		return nil
	}
}
