package mock

import (
	"context"
	"io"
	"testing"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/models"
	"github.com/slate-ml/slate-api-types/storage"
	"github.com/slate-ml/slate/cmd/slate/rest"
)

type PushDatasetArgs struct {
	Source string
	Key    string
}

func New(t *testing.T) *mockClient {
	return &mockClient{t: t}
}

type MockedPushDatasetProgress struct {
	EstimatedTotalSize_ int64

	ProgressedSize_ int64

	ProgressingFile_ string

	Error_ error

	Result_ *storage.ObjectSummary

	ResultOk_ bool

	Done_ <-chan struct{}

	Sent_ <-chan struct{}
}

func (m *MockedPushDatasetProgress) EstimatedTotalSize() int64 {
	return m.EstimatedTotalSize_
}

func (m *MockedPushDatasetProgress) ProgressedSize() int64 {
	return m.ProgressedSize_
}

func (m *MockedPushDatasetProgress) ProgressingFile() string {
	return m.ProgressingFile_
}

func (m *MockedPushDatasetProgress) Result() (*storage.ObjectSummary, bool) {
	return m.Result_, m.ResultOk_
}

func (m *MockedPushDatasetProgress) Error() error {
	return m.Error_
}

func (m *MockedPushDatasetProgress) Done() <-chan struct{} {
	return m.Done_
}

func (m *MockedPushDatasetProgress) Sent() <-chan struct{} {
	return m.Sent_
}

type mockClient struct {
	t    *testing.T
	Impl struct {
		StartJob      func(ctx context.Context, spec jobs.Spec) (jobs.Detail, error)
		GetJob        func(ctx context.Context, jobId string) (jobs.Detail, error)
		GetJobLog     func(ctx context.Context, jobId string, follow bool) (io.ReadCloser, error)
		FindJobs      func(ctx context.Context, query rest.FindJobsParameter) ([]jobs.Detail, error)
		StopJob       func(ctx context.Context, jobId string) (jobs.Detail, error)
		AbortJob      func(ctx context.Context, jobId string) (jobs.Detail, error)
		DeleteJob     func(ctx context.Context, jobId string) error
		RegisterModel func(ctx context.Context, spec models.Spec) (models.Detail, error)
		GetModel      func(ctx context.Context, modelId string) (models.Detail, error)
		FindModels    func(ctx context.Context, names []string) ([]models.Detail, error)
		ListObjects   func(ctx context.Context, prefix string) ([]storage.ObjectSummary, error)
		GetObject     func(ctx context.Context, key string, handler func(io.Reader) error) error
		GetDataset    func(ctx context.Context, key string, handler func(rest.FileEntry) error) error
		PushDataset   func(ctx context.Context, source string, key string, dereference bool) rest.Progress[*storage.ObjectSummary]
	}
	Calls struct {
		StartJob  []jobs.Spec
		GetJob    []string
		GetJobLog []struct {
			JobId  string
			Follow bool
		}
		FindJobs      []rest.FindJobsParameter
		StopJob       []string
		AbortJob      []string
		DeleteJob     []string
		RegisterModel []models.Spec
		GetModel      []string
		FindModels    [][]string
		ListObjects   []string
		GetObject     []string
		GetDataset    []string
		PushDataset   []PushDatasetArgs
	}
}

var _ rest.Client = &mockClient{}

func (m *mockClient) StartJob(ctx context.Context, spec jobs.Spec) (jobs.Detail, error) {
	m.t.Helper()

	m.Calls.StartJob = append(m.Calls.StartJob, spec)
	if m.Impl.StartJob == nil {
		m.t.Fatal("StartJob is not ready to be called")
	}
	return m.Impl.StartJob(ctx, spec)
}

func (m *mockClient) GetJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	m.t.Helper()

	m.Calls.GetJob = append(m.Calls.GetJob, jobId)
	if m.Impl.GetJob == nil {
		m.t.Fatal("GetJob is not ready to be called")
	}
	return m.Impl.GetJob(ctx, jobId)
}

func (m *mockClient) GetJobLog(ctx context.Context, jobId string, follow bool) (io.ReadCloser, error) {
	m.t.Helper()

	m.Calls.GetJobLog = append(m.Calls.GetJobLog, struct {
		JobId  string
		Follow bool
	}{JobId: jobId, Follow: follow})
	if m.Impl.GetJobLog == nil {
		m.t.Fatal("GetJobLog is not ready to be called")
	}
	return m.Impl.GetJobLog(ctx, jobId, follow)
}

func (m *mockClient) FindJobs(ctx context.Context, query rest.FindJobsParameter) ([]jobs.Detail, error) {
	m.t.Helper()

	m.Calls.FindJobs = append(m.Calls.FindJobs, query)
	if m.Impl.FindJobs == nil {
		m.t.Fatal("FindJobs is not ready to be called")
	}
	return m.Impl.FindJobs(ctx, query)
}

func (m *mockClient) StopJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	m.t.Helper()

	m.Calls.StopJob = append(m.Calls.StopJob, jobId)
	if m.Impl.StopJob == nil {
		m.t.Fatal("StopJob is not ready to be called")
	}
	return m.Impl.StopJob(ctx, jobId)
}

func (m *mockClient) AbortJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	m.t.Helper()

	m.Calls.AbortJob = append(m.Calls.AbortJob, jobId)
	if m.Impl.AbortJob == nil {
		m.t.Fatal("AbortJob is not ready to be called")
	}
	return m.Impl.AbortJob(ctx, jobId)
}

func (m *mockClient) DeleteJob(ctx context.Context, jobId string) error {
	m.t.Helper()

	m.Calls.DeleteJob = append(m.Calls.DeleteJob, jobId)
	if m.Impl.DeleteJob == nil {
		m.t.Fatal("DeleteJob is not ready to be called")
	}
	return m.Impl.DeleteJob(ctx, jobId)
}

func (m *mockClient) RegisterModel(ctx context.Context, spec models.Spec) (models.Detail, error) {
	m.t.Helper()

	m.Calls.RegisterModel = append(m.Calls.RegisterModel, spec)
	if m.Impl.RegisterModel == nil {
		m.t.Fatal("RegisterModel is not ready to be called")
	}
	return m.Impl.RegisterModel(ctx, spec)
}

func (m *mockClient) GetModel(ctx context.Context, modelId string) (models.Detail, error) {
	m.t.Helper()

	m.Calls.GetModel = append(m.Calls.GetModel, modelId)
	if m.Impl.GetModel == nil {
		m.t.Fatal("GetModel is not ready to be called")
	}
	return m.Impl.GetModel(ctx, modelId)
}

func (m *mockClient) FindModels(ctx context.Context, names []string) ([]models.Detail, error) {
	m.t.Helper()

	m.Calls.FindModels = append(m.Calls.FindModels, names)
	if m.Impl.FindModels == nil {
		m.t.Fatal("FindModels is not ready to be called")
	}
	return m.Impl.FindModels(ctx, names)
}

func (m *mockClient) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectSummary, error) {
	m.t.Helper()

	m.Calls.ListObjects = append(m.Calls.ListObjects, prefix)
	if m.Impl.ListObjects == nil {
		m.t.Fatal("ListObjects is not ready to be called")
	}
	return m.Impl.ListObjects(ctx, prefix)
}

func (m *mockClient) GetObject(ctx context.Context, key string, handler func(io.Reader) error) error {
	m.t.Helper()

	m.Calls.GetObject = append(m.Calls.GetObject, key)
	if m.Impl.GetObject == nil {
		m.t.Fatal("GetObject is not ready to be called")
	}
	return m.Impl.GetObject(ctx, key, handler)
}

func (m *mockClient) GetDataset(ctx context.Context, key string, handler func(rest.FileEntry) error) error {
	m.t.Helper()

	m.Calls.GetDataset = append(m.Calls.GetDataset, key)
	if m.Impl.GetDataset == nil {
		m.t.Fatal("GetDataset is not ready to be called")
	}
	return m.Impl.GetDataset(ctx, key, handler)
}

func (m *mockClient) PushDataset(ctx context.Context, source string, key string, dereference bool) rest.Progress[*storage.ObjectSummary] {
	m.t.Helper()

	m.Calls.PushDataset = append(m.Calls.PushDataset, PushDatasetArgs{Source: source, Key: key})
	if m.Impl.PushDataset == nil {
		m.t.Fatal("PushDataset is not ready to be called")
	}
	return m.Impl.PushDataset(ctx, source, key, dereference)
}
