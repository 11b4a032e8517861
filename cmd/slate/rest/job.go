package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slate-ml/slate-api-types/jobs"
	"github.com/slate-ml/slate-api-types/misc/rfctime"
)

// FindJobsParameter is a query for FindJobs. Zero-valued fields are not sent.
type FindJobsParameter struct {
	// statuses which Jobs to be found are in
	Status []string

	// training image which Jobs to be found use
	Image string

	// lower bound of Job update timestamps
	Since *time.Time

	// length of the time range starting at Since
	Duration *time.Duration
}

func (c *client) StartJob(ctx context.Context, spec jobs.Spec) (jobs.Detail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return jobs.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("jobs"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return jobs.Detail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return jobs.Detail{}, err
	}
	defer resp.Body.Close()

	var detail jobs.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("starting job is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return jobs.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("jobs", jobId), nil,
	)
	if err != nil {
		return jobs.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return jobs.Detail{}, err
	}
	defer resp.Body.Close()

	var detail jobs.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("jobId:%v is not found", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return jobs.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetJobLog(ctx context.Context, jobId string, follow bool) (io.ReadCloser, error) {
	followQuery := ""
	if follow {
		followQuery = "?follow"
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("jobs", jobId, "log")+followQuery, nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get log of jobId:%v", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return r, nil
}

func (c *client) FindJobs(ctx context.Context, query FindJobsParameter) ([]jobs.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("jobs"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if 0 < len(query.Status) {
		q.Add("status", strings.Join(query.Status, ","))
	}
	if query.Image != "" {
		q.Add("image", query.Image)
	}
	if query.Since != nil {
		q.Add("since", query.Since.Format(rfctime.RFC3339DateTimeFormatZ))
	}
	if query.Duration != nil {
		q.Add("duration", query.Duration.String())
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	details := make([]jobs.Detail, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &details,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return details, nil
}

func (c *client) StopJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	return c.putJobState(ctx, jobId, "stop", fmt.Sprintf("jobId:%v cannot be stopped", jobId))
}

func (c *client) AbortJob(ctx context.Context, jobId string) (jobs.Detail, error) {
	return c.putJobState(ctx, jobId, "abort", fmt.Sprintf("jobId:%v cannot be aborted", jobId))
}

func (c *client) putJobState(ctx context.Context, jobId string, state string, rejected string) (jobs.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("jobs", jobId, state), nil,
	)
	if err != nil {
		return jobs.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return jobs.Detail{}, err
	}
	defer resp.Body.Close()

	var detail jobs.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: rejected,
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return jobs.Detail{}, err
	}
	return detail, nil
}

func (c *client) DeleteJob(ctx context.Context, jobId string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("jobs", jobId), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("jobId:%v cannot be deleted", jobId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}
