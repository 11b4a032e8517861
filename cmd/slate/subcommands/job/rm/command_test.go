package rm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	sprof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	kenv "github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/rest/mock"
	"github.com/slate-ml/slate/cmd/slate/subcommands/internal/commandline"
	job_rm "github.com/slate-ml/slate/cmd/slate/subcommands/job/rm"
	"github.com/slate-ml/slate/cmd/slate/subcommands/logger"
	"github.com/slate-ml/slate/pkg/utils/try"
)

func TestDeleteCommand(t *testing.T) {
	type when struct {
		jobId string
		err   error
	}

	type then struct {
		err error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			profile := &sprof.SlateProfile{ApiRoot: "http://api.slate.invalid"}
			client := try.To(srest.NewClient(profile)).OrFatal(t)

			remove := func(
				ctx context.Context,
				client srest.Client,
				jobId string,
			) error {
				if jobId != when.jobId {
					t.Errorf("unexpected jobId: %s", jobId)
				}
				return when.err
			}

			testee := job_rm.Task(remove)

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				*kenv.New(),
				client,
				commandline.MockCommandline[struct{}]{
					Fullname_: "slate job rm",
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    struct{}{},
					Args_: map[string][]string{
						job_rm.ARG_JOBID: {when.jobId},
					},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf(
					"wrong result: (actual, expected) != (%v, %v)",
					err, then.err,
				)
			}
		}
	}

	t.Run("when it is passed existing jobId, it should succeed", theory(
		when{jobId: "test-Id", err: nil},
		then{err: nil},
	))
	{
		expectedError := errors.New("fake error")
		t.Run("when error is caused in client, it returns the error", theory(
			when{jobId: "test-Id", err: expectedError},
			then{err: expectedError},
		))
	}
}

func TestRunDeleteJob(t *testing.T) {
	t.Run("when client does not cause any error, it should return nil", func(t *testing.T) {
		ctx := context.Background()
		mock := mock.New(t)
		mock.Impl.DeleteJob = func(ctx context.Context, jobId string) error {
			return nil
		}

		err := job_rm.RunDeleteJob(ctx, mock, "test-jobId")
		if err != nil {
			t.Fatalf("RunDeleteJob returns error unexpectedly: %s (%+v)", err.Error(), err)
		}
	})

	t.Run("when client returns error, it should return the error as is", func(t *testing.T) {
		ctx := context.Background()
		mock := mock.New(t)
		expectedError := errors.New("fake error")
		mock.Impl.DeleteJob = func(ctx context.Context, jobId string) error {
			return expectedError
		}

		err := job_rm.RunDeleteJob(ctx, mock, "test-jobId")
		if !errors.Is(err, expectedError) {
			t.Errorf("returned error is not expected one: %+v", err)
		}
	})
}
