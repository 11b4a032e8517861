package stop_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slate-ml/slate-api-types/jobs"
	sprof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	kenv "github.com/slate-ml/slate/cmd/slate/env"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/cmd/slate/rest/mock"
	"github.com/slate-ml/slate/cmd/slate/subcommands/internal/commandline"
	job_stop "github.com/slate-ml/slate/cmd/slate/subcommands/job/stop"
	"github.com/slate-ml/slate/cmd/slate/subcommands/logger"
	"github.com/slate-ml/slate/pkg/utils/try"
)

func TestStopCommand(t *testing.T) {
	type when struct {
		flags job_stop.Flag
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

			stop := func(
				ctx context.Context,
				client srest.Client,
				jobId string,
				fail bool,
			) (jobs.Detail, error) {
				if jobId != when.jobId {
					t.Errorf("unexpected jobId: %s", jobId)
				}
				if fail != when.flags.Fail {
					t.Errorf("unexpected fail: %t", fail)
				}
				return jobs.Detail{}, when.err
			}

			testee := job_stop.Task(stop)

			stdout := new(strings.Builder)
			stderr := new(strings.Builder)

			ctx := context.Background()
			err := testee(
				ctx,
				logger.Null(),
				*kenv.New(),
				client,
				commandline.MockCommandline[job_stop.Flag]{
					Fullname_: "slate job stop",
					Stdout_:   stdout,
					Stderr_:   stderr,
					Flags_:    when.flags,
					Args_: map[string][]string{
						job_stop.ARG_JOBID: {when.jobId},
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

	t.Run("when called without --fail, it should succeed", theory(
		when{jobId: "test-Id"},
		then{err: nil},
	))
	t.Run("when called with --fail, it should succeed", theory(
		when{flags: job_stop.Flag{Fail: true}, jobId: "test-Id"},
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

func TestRunStopJob(t *testing.T) {
	type when struct {
		fail bool
	}
	type then struct {
		stopCalls  []string
		abortCalls []string
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()
			mock := mock.New(t)
			mock.Impl.StopJob = func(ctx context.Context, jobId string) (jobs.Detail, error) {
				return jobs.Detail{Summary: jobs.Summary{JobId: jobId, Status: jobs.StatusStopping}}, nil
			}
			mock.Impl.AbortJob = func(ctx context.Context, jobId string) (jobs.Detail, error) {
				return jobs.Detail{Summary: jobs.Summary{JobId: jobId, Status: jobs.StatusStopping}}, nil
			}

			got := try.To(
				job_stop.RunStopJob(ctx, mock, "test-jobId", when.fail),
			).OrFatal(t)
			if got.JobId != "test-jobId" {
				t.Errorf("unexpected Job: %+v", got)
			}

			if len(mock.Calls.StopJob) != len(then.stopCalls) {
				t.Errorf("unexpected StopJob calls: %+v", mock.Calls.StopJob)
			}
			if len(mock.Calls.AbortJob) != len(then.abortCalls) {
				t.Errorf("unexpected AbortJob calls: %+v", mock.Calls.AbortJob)
			}
		}
	}

	t.Run("when fail is false, it stops the Job gently", theory(
		when{fail: false},
		then{stopCalls: []string{"test-jobId"}},
	))
	t.Run("when fail is true, it aborts the Job", theory(
		when{fail: true},
		then{abortCalls: []string{"test-jobId"}},
	))
}
