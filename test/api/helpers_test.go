package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response mirrors the API envelope.
type Response struct {
	Code    int
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r Response) IsSuccess() bool {
	return r.Status == "success"
}

// Decode unmarshals the data field into v.
func (r Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Data, v)
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{baseURL: baseURL + "/api/v1", http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) do(method, path string, body interface{}, token string) (Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}
	out := Response{Code: resp.StatusCode}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return Response{}, fmt.Errorf("failed to decode %q: %w", raw, err)
		}
	}
	return out, nil
}
