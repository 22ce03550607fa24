package awic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// APIError is an application-level error object returned by the catalogue
// inside an otherwise successful HTTP response.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalogue error %s: %s", e.Code, e.Message)
}

// Client issues the two catalogue queries and normalizes their responses.
type Client struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL *url.URL
}

// New creates a catalogue client. An empty baseURL selects the public
// catalogue root; a nil httpClient falls back to http.DefaultClient.
func New(logger *slog.Logger, httpClient *http.Client, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{logger: logger, client: httpClient, baseURL: u}, nil
}

func (c *Client) endpoint(query string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + "/" + query
}

// FetchProducts executes the observation query and normalizes the response.
// Transport failures, non-2xx statuses and undecodable bodies degrade to an
// empty result set with a logged warning; application-level catalogue errors
// and malformed per-row date/time values are returned to the caller.
func (c *Client) FetchProducts(ctx context.Context, q Query) ([]Product, error) {
	query, err := q.ProductQuery()
	if err != nil {
		return nil, err
	}
	target := c.endpoint(query)
	c.logger.Info("executing request for AWIC products", "url", target)

	root, err := c.get(ctx, target)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		c.logger.Warn("AWIC request failed", "err", err)
		return []Product{}, nil
	}

	rows, err := rawRows(root)
	if err != nil {
		c.logger.Warn("AWIC response malformed", "err", err)
		return []Product{}, nil
	}

	products := make([]Product, 0, len(rows))
	for i, row := range rows {
		p, err := normalizeProduct(row, i)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		c.logger.Warn("no AWIC data was found")
	} else {
		c.logger.Info("AWIC products found", "count", len(products))
	}
	return products, nil
}

// FetchGeometries executes the geometry query. Unlike the observation path,
// every transport, status, decode and application-level failure is returned
// as an error; an empty slice with a nil error always means the catalogue
// had no matching features.
func (c *Client) FetchGeometries(ctx context.Context, q Query) ([]Geometry, error) {
	query, err := q.GeometryQuery()
	if err != nil {
		return nil, err
	}
	target := c.endpoint(query)
	c.logger.Info("executing request for geometries", "url", target)

	root, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	rows, err := rawRows(root)
	if err != nil {
		return nil, err
	}
	geometries := make([]Geometry, 0, len(rows))
	for i, row := range rows {
		g, err := normalizeGeometry(row, i)
		if err != nil {
			return nil, err
		}
		geometries = append(geometries, g)
	}
	return geometries, nil
}

// get executes one catalogue GET and decodes the body with numbers kept
// verbatim. A top-level object carrying a code field is an *APIError even
// though the transport succeeded.
func (c *Client) get(ctx context.Context, target string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusRequestURITooLong {
		return nil, fmt.Errorf("request-URI too large (status %d), reduce the spatial filter WKT", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("catalogue status %d: %s", resp.StatusCode, string(b))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if obj, ok := root.(map[string]any); ok {
		if code := fieldString(obj["code"]); code != "" {
			return nil, &APIError{Code: code, Message: fieldString(obj["message"])}
		}
	}
	return root, nil
}

// rawRows unwraps the catalogue's array-of-objects envelope. Each element
// wraps the raw field array under a single arbitrary key; elements with an
// empty or missing array are skipped.
func rawRows(root any) ([][]any, error) {
	arr, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON array")
	}
	rows := make([][]any, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("response element %d is not an object", i)
		}
		for _, v := range obj {
			if row, ok := v.([]any); ok && len(row) > 0 {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}
