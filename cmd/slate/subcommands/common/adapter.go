package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/slate-ml/slate/cmd/slate/config/profiles"
	"github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(
			ctx,
			logger,
			commonFlag,
			cl,
			newpos,
		)
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	slateEnv env.SlateEnv,
	client srest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {

	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		e, err := env.LoadSlateEnv(commonFlag.Env)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: failed to load slateenv", err)
			}
		}

		client, err := NewClient(commonFlag)
		if err != nil {
			return err
		}
		return task(ctx, logger, *e, client, cl, params)
	})
}

// NewClient builds a REST client from the profile the common flags point at.
func NewClient(commonFlag CommonFlags) (srest.Client, error) {
	profile, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileStoreNotFound) {
			return nil, fmt.Errorf(
				"%w: profile store (%s) is not found. Please try `slate init` first. Ask your admin to get a slate profile",
				err, commonFlag.ProfileStore,
			)
		}
		return nil, fmt.Errorf(
			"%w: failed to load profile store (%s)",
			err, commonFlag.ProfileStore,
		)
	}
	prof, ok := profile[commonFlag.Profile]
	if !ok {
		return nil, fmt.Errorf(
			"profile '%s' not found in the profile store (%s)",
			commonFlag.Profile, commonFlag.ProfileStore,
		)
	}

	client, err := srest.NewClient(prof)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to create slate client. Your profile (%s in %s) can be broken.\n\nRemove it and try `slate init` again. Ask your admin to get a slate profile",
			err, commonFlag.Profile, commonFlag.ProfileStore,
		)
	}
	return client, nil
}
