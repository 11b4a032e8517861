package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apierr "github.com/slate-ml/slate-api-types/errors"
	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/misc/rfctime"
	sprof "github.com/slate-ml/slate/cmd/slate/config/profiles"
	srest "github.com/slate-ml/slate/cmd/slate/rest"
	"github.com/slate-ml/slate/pkg/utils/try"
	"k8s.io/apimachinery/pkg/api/resource"
)

func mustParseImage(t *testing.T, s string) jobs.Image {
	t.Helper()
	img := jobs.Image{}
	if err := img.Parse(s); err != nil {
		t.Fatal(err)
	}
	return img
}

func TestStartJob(t *testing.T) {
	t.Run("when server accepts the spec, it returns the created job", func(t *testing.T) {
		spec := jobs.Spec{
			Name:       "train-detector",
			Image:      mustParseImage(t, "registry.example.com/trainer:v1"),
			DatasetKey: "datasets/traffic-2024.tar.gz",
			Hyperparameters: map[string]string{
				"epochs": "10",
			},
			Resources: jobs.Resources{
				"cpu": resource.MustParse("2"),
			},
		}
		expectedResponse := jobs.Detail{
			Summary: jobs.Summary{
				JobId:  "test-jobId",
				Status: jobs.StatusQueued,
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
			},
			Spec: spec,
		}

		var requested *jobs.Spec
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
				t.Errorf("request is not POST /jobs (actual = %s %s)", r.Method, r.URL.Path)
			}
			got := new(jobs.Spec)
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("request body is not a job spec: %s", err)
			}
			requested = got

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			body := try.To(json.Marshal(expectedResponse)).OrFatal(t)
			w.Write(body)
		}))
		defer server.Close()

		profile := sprof.SlateProfile{ApiRoot: server.URL}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.StartJob(context.Background(), spec)).OrFatal(t)

		if requested == nil || !requested.Equal(spec) {
			t.Errorf("sent spec is not equal (actual, expected): %+v, %+v", requested, spec)
		}
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual, expected): %v, %v", actualResponse, expectedResponse)
		}
	})

	t.Run("a server responding with error is given", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
			t.Run(fmt.Sprintf("when server responds with %d, it returns error", status), func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(status)
					buf := try.To(json.Marshal(
						apierr.ErrorMessage{Reason: "fake error"},
					)).OrFatal(t)
					w.Write(buf)
				}))
				defer server.Close()

				profile := sprof.SlateProfile{ApiRoot: server.URL}
				testee := try.To(srest.NewClient(&profile)).OrFatal(t)

				if _, err := testee.StartJob(context.Background(), jobs.Spec{}); err == nil {
					t.Error("no error occured")
				}
			})
		}
	})
}

func TestGetJob(t *testing.T) {
	t.Run("when server returns a job, it returns that as is", func(t *testing.T) {
		expectedResponse := jobs.Detail{
			Summary: jobs.Summary{
				JobId:  "test-jobId",
				Status: jobs.StatusDone,
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
				Exit: &jobs.Exit{Code: 0, Message: "finished"},
			},
			Spec: jobs.Spec{
				Name:       "train-detector",
				Image:      mustParseImage(t, "registry.example.com/trainer:v1"),
				DatasetKey: "datasets/traffic-2024.tar.gz",
			},
			ArtifactKey: "artifacts/test-jobId/model.pt",
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/jobs/test-jobId" {
				t.Errorf("request is not GET /jobs/test-jobId (actual = %s %s)", r.Method, r.URL.Path)
			}
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := sprof.SlateProfile{ApiRoot: server.URL}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.GetJob(context.Background(), "test-jobId")).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual, expected): %v, %v", actualResponse, expectedResponse)
		}
	})
}

func TestFindJobs(t *testing.T) {
	t.Run("it passes query parameters and returns found jobs", func(t *testing.T) {
		expectedResponse := []jobs.Detail{
			{
				Summary: jobs.Summary{
					JobId:  "job-1",
					Status: jobs.StatusRunning,
					UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
						"2024-04-02T12:00:00+00:00",
					)).OrFatal(t),
				},
			},
		}

		var query map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/jobs" {
				t.Errorf("request is not GET /jobs (actual = %s %s)", r.Method, r.URL.Path)
			}
			query = r.URL.Query()

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := sprof.SlateProfile{ApiRoot: server.URL}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		since := try.To(
			time.Parse(time.RFC3339, "2024-04-01T00:00:00Z"),
		).OrFatal(t)
		duration := 24 * time.Hour

		actualResponse := try.To(testee.FindJobs(
			context.Background(),
			srest.FindJobsParameter{
				Status:   []string{jobs.StatusRunning, jobs.StatusQueued},
				Image:    "registry.example.com/trainer:v1",
				Since:    &since,
				Duration: &duration,
			},
		)).OrFatal(t)

		if len(actualResponse) != 1 || !actualResponse[0].Equal(expectedResponse[0]) {
			t.Errorf("response is not equal (actual, expected): %v, %v", actualResponse, expectedResponse)
		}

		if got := query["status"]; len(got) != 1 || got[0] != "running,queued" {
			t.Errorf("query status unmatch: %+v", got)
		}
		if got := query["image"]; len(got) != 1 || got[0] != "registry.example.com/trainer:v1" {
			t.Errorf("query image unmatch: %+v", got)
		}
		if got := query["since"]; len(got) != 1 || got[0] != "2024-04-01T00:00:00Z" {
			t.Errorf("query since unmatch: %+v", got)
		}
		if got := query["duration"]; len(got) != 1 || got[0] != "24h0m0s" {
			t.Errorf("query duration unmatch: %+v", got)
		}
	})
}

func TestStopJob(t *testing.T) {
	theory := func(
		call func(srest.Client, context.Context, string) (jobs.Detail, error),
		wantPath string,
	) func(*testing.T) {
		return func(t *testing.T) {
			expectedResponse := jobs.Detail{
				Summary: jobs.Summary{
					JobId:  "test-jobId",
					Status: jobs.StatusStopping,
					UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
						"2024-04-02T12:00:00+00:00",
					)).OrFatal(t),
				},
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != wantPath {
					t.Errorf("request is not PUT %s (actual = %s %s)", wantPath, r.Method, r.URL.Path)
				}
				w.Header().Add("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
			}))
			defer server.Close()

			profile := sprof.SlateProfile{ApiRoot: server.URL}
			testee := try.To(srest.NewClient(&profile)).OrFatal(t)

			actualResponse := try.To(call(testee, context.Background(), "test-jobId")).OrFatal(t)
			if !actualResponse.Equal(expectedResponse) {
				t.Errorf("response is not equal (actual, expected): %v, %v", actualResponse, expectedResponse)
			}
		}
	}

	t.Run("StopJob puts to /jobs/{id}/stop", theory(
		srest.Client.StopJob, "/jobs/test-jobId/stop",
	))
	t.Run("AbortJob puts to /jobs/{id}/abort", theory(
		srest.Client.AbortJob, "/jobs/test-jobId/abort",
	))
}

func TestDeleteJob(t *testing.T) {
	t.Run("when server accepts, it returns no error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/jobs/test-jobId" {
				t.Errorf("request is not DELETE /jobs/test-jobId (actual = %s %s)", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		profile := sprof.SlateProfile{ApiRoot: server.URL}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		if err := testee.DeleteJob(context.Background(), "test-jobId"); err != nil {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("when server rejects, it returns error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write(try.To(json.Marshal(
				apierr.ErrorMessage{Reason: "job is running", Advice: "stop it first"},
			)).OrFatal(t))
		}))
		defer server.Close()

		profile := sprof.SlateProfile{ApiRoot: server.URL}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		if err := testee.DeleteJob(context.Background(), "test-jobId"); err == nil {
			t.Error("no error occured")
		}
	})
}

func TestClientToken(t *testing.T) {
	issueToken := func(t *testing.T, exp time.Time) string {
		t.Helper()
		token, err := jwt.NewWithClaims(
			jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "test-user", "exp": exp.Unix()},
		).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatal(err)
		}
		return token
	}

	t.Run("when the profile token is live, it is attached to requests", func(t *testing.T) {
		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		token := issueToken(t, time.Now().Add(1*time.Hour))
		profile := sprof.SlateProfile{ApiRoot: server.URL, Token: token}
		testee := try.To(srest.NewClient(&profile)).OrFatal(t)

		if _, err := testee.FindJobs(context.Background(), srest.FindJobsParameter{}); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if authorization != "Bearer "+token {
			t.Errorf("Authorization header unmatch: %s", authorization)
		}
	})

	t.Run("when the profile token is expired, NewClient fails fast", func(t *testing.T) {
		token := issueToken(t, time.Now().Add(-1*time.Hour))
		profile := sprof.SlateProfile{ApiRoot: "https://api.example.com", Token: token}

		if _, err := srest.NewClient(&profile); !errors.Is(err, srest.ErrTokenExpired) {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("when the profile token is not a JWT, NewClient fails", func(t *testing.T) {
		profile := sprof.SlateProfile{ApiRoot: "https://api.example.com", Token: "not-a-jwt"}

		if _, err := srest.NewClient(&profile); err == nil {
			t.Error("no error occured")
		}
	})
}
