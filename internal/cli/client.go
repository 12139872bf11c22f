package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/me/planline/pkg/model"
)

// Client is an HTTP client for the planline API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a planline API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

// apiResponse is the parsed envelope.
type apiResponse struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

// send performs an HTTP request and returns the status and raw body.
func (c *Client) send(method, path, contentType string, body io.Reader) (int, []byte, error) {
	url := c.BaseURL + path

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.Logger.Debug("HTTP request", "method", method, "url", url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody),
		"request_id", resp.Header.Get("X-Request-ID"))
	return resp.StatusCode, respBody, nil
}

// do performs a JSON request and returns the parsed envelope. An error
// envelope is returned as a *model.APIError.
func (c *Client) do(method, path string, body any) (*apiResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		c.Logger.Debug("HTTP request body", "body", string(data))
	}

	status, respBody, err := c.send(method, path, "application/json", bodyReader)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(status, respBody)
}

func parseEnvelope(status int, body []byte) (*apiResponse, error) {
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response (status %d): %w\nbody: %s", status, err, string(body))
	}
	if apiResp.Status == "error" && apiResp.Error != nil {
		return &apiResp, apiResp.Error
	}
	return &apiResp, nil
}

// Get performs a GET request.
func (c *Client) Get(path string) (*apiResponse, error) {
	return c.do(http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(path string, body any) (*apiResponse, error) {
	return c.do(http.MethodPost, path, body)
}

// Put performs a PUT request.
func (c *Client) Put(path string, body any) (*apiResponse, error) {
	return c.do(http.MethodPut, path, body)
}

// Patch performs a PATCH request.
func (c *Client) Patch(path string, body any) (*apiResponse, error) {
	return c.do(http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(path string) (*apiResponse, error) {
	return c.do(http.MethodDelete, path, nil)
}

// Download GETs a non-envelope document such as an export.
func (c *Client) Download(path string) ([]byte, error) {
	status, body, err := c.send(http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		_, err := parseEnvelope(status, body)
		if err == nil {
			err = fmt.Errorf("unexpected status %d", status)
		}
		return nil, err
	}
	return body, nil
}

// Upload POSTs a raw document and returns the parsed envelope.
func (c *Client) Upload(path, contentType string, body io.Reader) (*apiResponse, error) {
	status, respBody, err := c.send(http.MethodPost, path, contentType, body)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(status, respBody)
}

// pageSize is the largest page the server hands out.
const pageSize = 1000

// fetchAll reads every item of a paginated list endpoint, following
// has_more from page to page.
func fetchAll[T any](c *Client, path string) ([]T, error) {
	items := []T{}
	for offset := 0; ; {
		resp, err := c.Get(fmt.Sprintf("%s?limit=%d&offset=%d", path, pageSize, offset))
		if err != nil {
			return nil, err
		}
		var page []T
		if err := decodeData(resp, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)

		if resp.Pagination == nil || !resp.Pagination.HasMore || len(page) == 0 {
			return items, nil
		}
		offset += len(page)
		c.Logger.Debug("fetching next page", "path", path, "offset", offset, "total", resp.Pagination.Total)
	}
}

// decodeData unmarshals the envelope's data into v.
func decodeData(resp *apiResponse, v any) error {
	if err := json.Unmarshal(resp.Data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
