package slipo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/me/slipo/pkg/frame"
)

// catalogColumns is the column order of the catalog query table.
var catalogColumns = []string{
	"id", "name", "description", "size", "numberOfEntities",
	"tableName", "createdOn", "boundingBox",
}

// QueryOptions control term filtering and paging of catalog and process
// queries.
type QueryOptions struct {
	// Term filters results to names containing it; empty matches all.
	Term string

	// PageIndex is the zero-based page to fetch.
	PageIndex int

	// PageSize is the page size (default 10).
	PageSize int
}

func (o QueryOptions) request() map[string]any {
	pageSize := o.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	req := map[string]any{
		"pagingOptions": map[string]int{
			"pageIndex": o.PageIndex,
			"pageSize":  pageSize,
		},
	}
	if o.Term != "" {
		req["query"] = map[string]string{"name": o.Term}
	}
	return req
}

type rawCatalogResource struct {
	ID               *int64   `json:"id"`
	Name             *string  `json:"name"`
	Description      string   `json:"description"`
	Size             int64    `json:"size"`
	NumberOfEntities int64    `json:"numberOfEntities"`
	TableName        string   `json:"tableName"`
	CreatedOn        *float64 `json:"createdOn"`
	BoundingBox      string   `json:"boundingBox"`
}

// CatalogQuery queries the resource catalog for RDF datasets and returns
// one row per matching resource.
func (c *Client) CatalogQuery(ctx context.Context, opts QueryOptions) (*frame.Frame, error) {
	const op = "CatalogQuery"

	result, err := c.call(ctx, op, http.MethodPost, "api/v1/resource", nil, opts.request())
	if err != nil {
		return nil, err
	}

	var page struct {
		Items []rawCatalogResource `json:"items"`
	}
	if err := json.Unmarshal(result, &page); err != nil {
		return nil, WrapError(op, fmt.Errorf("decoding catalog page: %w", err))
	}

	records := make([]frame.Record, 0, len(page.Items))
	for _, r := range page.Items {
		if r.ID == nil {
			return nil, malformed(op, "catalog resource is missing id")
		}
		if r.Name == nil {
			return nil, malformed(op, "catalog resource is missing name")
		}
		records = append(records, frame.Record{
			"id":               *r.ID,
			"name":             *r.Name,
			"description":      r.Description,
			"size":             r.Size,
			"numberOfEntities": r.NumberOfEntities,
			"tableName":        r.TableName,
			"createdOn":        Timestamp(r.CreatedOn),
			"boundingBox":      r.BoundingBox,
		})
	}

	return frame.New(catalogColumns, records), nil
}

// CatalogDownload downloads a catalog resource revision to the local file
// system.
func (c *Client) CatalogDownload(ctx context.Context, resourceID, version int64, target string) error {
	path := fmt.Sprintf("api/v1/resource/%d/%d/download", resourceID, version)
	return c.download(ctx, "CatalogDownload", path, nil, target)
}
