package redash

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/ppiankov/queryspectre/internal/models"
)

// QueryPage is one page of the api/queries listing
type QueryPage struct {
	Count    int            `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Results  []models.Query `json:"results"`
}

// PageFunc fetches a single page of a paginated resource
type PageFunc func(ctx context.Context, page, pageSize int) (*QueryPage, error)

// Queries fetches one page of saved queries
func (c *Client) Queries(ctx context.Context, page, pageSize int) (*QueryPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var out QueryPage
	if err := c.Get(ctx, "api/queries", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Paginate walks fetch from page 1 until the reported count is exhausted and
// returns every record as one flat slice
func (c *Client) Paginate(ctx context.Context, fetch PageFunc) ([]models.Query, error) {
	var all []models.Query
	page := 1

	for {
		resp, err := fetch(ctx, page, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		all = append(all, resp.Results...)

		current := resp.Page
		if current <= 0 {
			current = page
		}
		size := resp.PageSize
		if size <= 0 {
			size = c.pageSize
		}

		slog.Debug("fetched page",
			slog.Int("page", current),
			slog.Int("results", len(resp.Results)),
			slog.Int("total", resp.Count),
		)

		if len(resp.Results) == 0 || current*size >= resp.Count {
			break
		}

		// never revisit a page, even if the server echoes a stale page number
		next := current + 1
		if next <= page {
			next = page + 1
		}
		page = next
	}

	return all, nil
}
