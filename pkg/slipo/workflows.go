package slipo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/me/slipo/pkg/frame"
)

// workflowColumns is the column order of the process query table.
var workflowColumns = []string{
	"id", "version", "updatedOn", "executedOn", "name", "description", "taskType",
}

// ProcessQuery queries workflow instances and returns one row per process
// revision. A process returned with nested historical revisions
// contributes every revision as its own row.
func (c *Client) ProcessQuery(ctx context.Context, opts QueryOptions) (*frame.Frame, error) {
	const op = "ProcessQuery"

	result, err := c.call(ctx, op, http.MethodPost, "api/v1/process", nil, opts.request())
	if err != nil {
		return nil, err
	}

	var page struct {
		Items []rawProcessSummary `json:"items"`
	}
	if err := json.Unmarshal(result, &page); err != nil {
		return nil, WrapError(op, fmt.Errorf("decoding process page: %w", err))
	}

	records, err := flattenWorkflows(op, page.Items)
	if err != nil {
		return nil, err
	}
	return frame.New(workflowColumns, records), nil
}

// ProcessStatus fetches one workflow instance with its execution record,
// if any. The returned Process reflects the remote state at call time;
// poll by calling again.
func (c *Client) ProcessStatus(ctx context.Context, id, version int64) (*Process, error) {
	const op = "ProcessStatus"

	path := fmt.Sprintf("api/v1/process/%d/%d", id, version)
	result, err := c.call(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeProcess(op, result)
}

// ProcessStart starts or resumes execution of a workflow instance.
func (c *Client) ProcessStart(ctx context.Context, id, version int64) error {
	path := fmt.Sprintf("api/v1/process/%d/%d/start", id, version)
	_, err := c.call(ctx, "ProcessStart", http.MethodPost, path, nil, nil)
	return err
}

// ProcessStop stops a running workflow execution instance.
func (c *Client) ProcessStop(ctx context.Context, id, version int64) error {
	path := fmt.Sprintf("api/v1/process/%d/%d/stop", id, version)
	_, err := c.call(ctx, "ProcessStop", http.MethodPost, path, nil, nil)
	return err
}

// ProcessFileDownload downloads one input or output file of a workflow
// execution to the local file system.
func (c *Client) ProcessFileDownload(ctx context.Context, id, version, fileID int64, target string) error {
	path := fmt.Sprintf("api/v1/process/%d/%d/file/%d", id, version, fileID)
	return c.download(ctx, "ProcessFileDownload", path, nil, target)
}

// DownloadOutput downloads the file behind a resolved StepFile handle.
func (c *Client) DownloadOutput(ctx context.Context, f *StepFile, target string) error {
	return c.ProcessFileDownload(ctx, f.ProcessID(), f.ProcessVersion(), f.ID(), target)
}
