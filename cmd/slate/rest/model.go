package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/slate-ml/slate-api-types/models"
)

func (c *client) RegisterModel(ctx context.Context, spec models.Spec) (models.Detail, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return models.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("models"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return models.Detail{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return models.Detail{}, err
	}
	defer resp.Body.Close()

	var detail models.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("registering model is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return models.Detail{}, err
	}
	return detail, nil
}

func (c *client) GetModel(ctx context.Context, modelId string) (models.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("models", modelId), nil,
	)
	if err != nil {
		return models.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return models.Detail{}, err
	}
	defer resp.Body.Close()

	var detail models.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("modelId:%v is not found", modelId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return models.Detail{}, err
	}
	return detail, nil
}

func (c *client) FindModels(ctx context.Context, names []string) ([]models.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("models"), nil)
	if err != nil {
		return nil, err
	}

	if 0 < len(names) {
		q := req.URL.Query()
		for _, n := range names {
			q.Add("name", n)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	details := make([]models.Detail, 0, 5)
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
