package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// getPage performs a single GET against endpoint with the given query
// parameters plus the page number, returning the raw body and status.
func (c *Client) getPage(ctx context.Context, endpoint string, params url.Values, page int) ([]byte, int, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing base URL: %w", err)
	}
	u = u.JoinPath(endpoint)

	params.Set("pagina", strconv.Itoa(page))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("chave-api-dados", c.cfg.APIKey)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// fetchPages walks a paginated endpoint from page 1 until the portal
// signals the end of the result set, accumulating the raw records of
// every page.
//
// The portal marks exhaustion in three ways, checked in order: an empty
// body (or empty JSON array), a page whose body is byte-for-byte
// identical to the previous one (the portal repeats the last page
// rather than returning an empty one past the end), and a batch smaller
// than the page-size ceiling. The duplicated page is not accumulated.
//
// On failure the records gathered so far are returned alongside a
// *QueryError so callers can keep partial results.
func (c *Client) fetchPages(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	var (
		records  []json.RawMessage
		prevBody []byte
	)

	for page := 1; ; page++ {
		if page > 1 {
			if err := c.clock.Sleep(ctx, c.cfg.PageDelay); err != nil {
				return records, &QueryError{Endpoint: endpoint, Page: page, Err: err}
			}
		}

		body, status, err := c.getPage(ctx, endpoint, params, page)
		if err != nil {
			return records, &QueryError{Endpoint: endpoint, Page: page, Err: err}
		}
		if status < 200 || status >= 300 {
			c.logger.Warn("Portal rejected query",
				"endpoint", endpoint,
				"page", page,
				"status", status)
			return records, &QueryError{Endpoint: endpoint, Page: page, Status: status}
		}

		if len(bytes.TrimSpace(body)) == 0 {
			return records, nil
		}

		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			return records, &QueryError{
				Endpoint: endpoint,
				Page:     page,
				Status:   status,
				Err:      fmt.Errorf("decoding page: %w", err),
			}
		}
		if len(batch) == 0 {
			return records, nil
		}

		if prevBody != nil && bytes.Equal(body, prevBody) {
			c.logger.Debug("Portal repeated previous page, stopping",
				"endpoint", endpoint,
				"page", page)
			return records, nil
		}
		prevBody = body

		records = append(records, batch...)
		c.logger.Debug("Fetched page",
			"endpoint", endpoint,
			"page", page,
			"records", len(batch))

		if len(batch) < c.cfg.PageSize {
			return records, nil
		}
	}
}

// fetchSinglePage queries an endpoint that the portal serves as one
// fixed page.
func (c *Client) fetchSinglePage(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	body, status, err := c.getPage(ctx, endpoint, params, 1)
	if err != nil {
		return nil, &QueryError{Endpoint: endpoint, Page: 1, Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &QueryError{Endpoint: endpoint, Page: 1, Status: status}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, &QueryError{
			Endpoint: endpoint,
			Page:     1,
			Status:   status,
			Err:      fmt.Errorf("decoding page: %w", err),
		}
	}
	return batch, nil
}
