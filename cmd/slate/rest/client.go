package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	sprof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	"github.com/slate-ml/slate/pkg/utils"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/models"
	"github.com/slate-ml/slate-api-types/storage"
)

var ErrTokenExpired = errors.New("token in profile is expired")

type Client interface {
	// StartJob launches a new training Job.
	//
	// Args
	//
	// - context.Context
	//
	// - jobs.Spec: spec of the Job to be started
	//
	// Returns
	//
	// - jobs.Detail: metadata of the started Job
	//
	// - error
	StartJob(ctx context.Context, spec jobs.Spec) (jobs.Detail, error)

	// GetJob gets Job detail with given jobId.
	GetJob(ctx context.Context, jobId string) (jobs.Detail, error)

	// GetJobLog gets log of Job with given jobId.
	//
	// Args
	//
	// - context.Context
	//
	// - string: jobId to be found
	//
	// - bool: follow the log while the Job is running
	//
	// Returns
	//
	// - io.ReadCloser: stream of log
	//
	// - error
	GetJobLog(ctx context.Context, jobId string, follow bool) (io.ReadCloser, error)

	// FindJobs finds Jobs with given status, image and time range.
	FindJobs(ctx context.Context, query FindJobsParameter) ([]jobs.Detail, error)

	// StopJob stops Job with given jobId gently.
	//
	// The Job will be "stopping" status after this operation and
	// its result is kept.
	StopJob(ctx context.Context, jobId string) (jobs.Detail, error)

	// AbortJob stops Job with given jobId and lets it be failed.
	AbortJob(ctx context.Context, jobId string) (jobs.Detail, error)

	// DeleteJob deletes Job with given jobId.
	DeleteJob(ctx context.Context, jobId string) error

	// RegisterModel registers a trained model.
	//
	// Args
	//
	// - context.Context
	//
	// - models.Spec: spec of the model to be registered
	//
	// Returns
	//
	// - models.Detail: metadata of the registered model
	//
	// - error
	RegisterModel(ctx context.Context, spec models.Spec) (models.Detail, error)

	// GetModel gets model detail with given modelId.
	GetModel(ctx context.Context, modelId string) (models.Detail, error)

	// FindModels finds models with given names.
	//
	// When names is empty, all models are found.
	FindModels(ctx context.Context, names []string) ([]models.Detail, error)

	// ListObjects lists objects in service storage under prefix,
	// in key order.
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectSummary, error)

	// GetObject streams an object from service storage and verifies its
	// checksum when the server sends one.
	//
	// Args
	//
	// - key: key of the object to be downloaded
	//
	// - handler: function to be called for the raw stream.
	// If handler returns an error, downloading is stopped and
	// the error is returned.
	//
	// Returns
	//
	// - error: error occured when starting downloading,
	// or ErrNotFound of pkg/viz/store when the object does not exist.
	GetObject(ctx context.Context, key string, handler func(io.Reader) error) error

	// GetDataset downloads an archived dataset from service storage and
	// extracts it file by file.
	//
	// Args
	//
	// - key: key of the dataset archive
	//
	// - handler: function to be called for each file in the archive.
	// If handler returns an error, downloading is stopped and
	// the error is returned.
	GetDataset(ctx context.Context, key string, handler func(FileEntry) error) error

	// PushDataset archives a local directory as tar.gz and uploads it to
	// service storage at key.
	//
	// Args
	//
	// - source: path to directory to be uploaded
	//
	// - key: destination key in service storage
	//
	// - dereference: follow symlinks while archiving
	//
	// Returns
	//
	// - Progress[*storage.ObjectSummary]: progress of archiving and
	// uploading, and the stored object on success.
	PushDataset(ctx context.Context, source string, key string, dereference bool) Progress[*storage.ObjectSummary]
}

type client struct {
	httpclient *http.Client
	api        string
}

// NewClient creates a Client for a SlateProfile.
//
// When the profile carries a token, its expiry is checked here so that a
// stale profile fails fast instead of on the first request.
//
// # Return
//
// - Client: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
// If the profile token is already expired, ErrTokenExpired is returned.
func NewClient(prof *sprof.SlateProfile) (Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	if prof.Token != "" {
		if err := verifyTokenExpiry(prof.Token, time.Now()); err != nil {
			return nil, err
		}
		httpclient.Transport = &bearerTransport{
			base:  httpclient.Transport,
			token: prof.Token,
		}
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

// verifyTokenExpiry checks the exp claim of token without verifying the
// signature. Signature verification is the server's business; the client
// only wants to refuse sending requests doomed to 401.
func verifyTokenExpiry(token string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("token in profile is not a JWT: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("token in profile has broken exp claim: %w", err)
	}
	if exp != nil && exp.Before(now) {
		return fmt.Errorf(
			"%w (at %s). Get a new token and run `slate init` again",
			ErrTokenExpired, exp.Format(time.RFC3339),
		)
	}
	return nil
}

// bearerTransport attaches the profile token to every request.
type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (bt *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := bt.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+bt.token)
	return base.RoundTrip(r)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
