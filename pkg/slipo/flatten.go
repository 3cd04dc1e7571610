package slipo

import (
	"encoding/json"

	"github.com/me/slipo/pkg/frame"
)

// treeNode is the loose decode of one folder node. Keys are probed
// individually so a node missing "folders" or "files" is simply a leaf
// or an empty folder, never an error.
type treeNode map[string]json.RawMessage

type rawTreeFile struct {
	Name     *string  `json:"name"`
	Modified *float64 `json:"modified"`
	Size     *int64   `json:"size"`
	Path     *string  `json:"path"`
}

// flattenFileSystem walks a folder tree and emits one FileEntry per file
// found anywhere in it, in discovery order. It uses an explicit worklist
// so adversarially deep trees cannot exhaust the stack.
//
// Nodes that are not JSON objects are skipped silently; a file record
// missing a required field is a malformed-response fault.
func flattenFileSystem(op string, root json.RawMessage) ([]FileEntry, error) {
	result := []FileEntry{}

	work := []json.RawMessage{root}
	for len(work) > 0 {
		raw := work[0]
		work = work[1:]

		var node treeNode
		if err := json.Unmarshal(raw, &node); err != nil {
			continue
		}

		if rawFiles, ok := node["files"]; ok {
			var files []json.RawMessage
			if err := json.Unmarshal(rawFiles, &files); err != nil {
				return nil, malformed(op, "folder entry \"files\" is not a list")
			}
			for _, rawFile := range files {
				var f rawTreeFile
				if err := json.Unmarshal(rawFile, &f); err != nil {
					return nil, malformed(op, "file entry is not an object")
				}
				if f.Name == nil {
					return nil, malformed(op, "file entry is missing name")
				}
				if f.Path == nil {
					return nil, malformed(op, "file entry is missing path")
				}
				if f.Size == nil {
					return nil, malformed(op, "file entry is missing size")
				}
				result = append(result, FileEntry{
					Name:     *f.Name,
					Modified: Timestamp(f.Modified),
					Size:     *f.Size,
					Path:     *f.Path,
				})
			}
		}

		// A missing or non-list "folders" value makes the node a leaf.
		if rawFolders, ok := node["folders"]; ok {
			var folders []json.RawMessage
			if err := json.Unmarshal(rawFolders, &folders); err == nil {
				work = append(work, folders...)
			}
		}
	}

	return result, nil
}

// rawProcessSummary is one item of a process query result. A summary may
// nest the historical revisions of the same process under "revisions".
type rawProcessSummary struct {
	ID          *int64               `json:"id"`
	Version     *int64               `json:"version"`
	UpdatedOn   *float64             `json:"updatedOn"`
	ExecutedOn  *float64             `json:"executedOn"`
	Name        *string              `json:"name"`
	Description string               `json:"description"`
	TaskType    string               `json:"taskType"`
	Revisions   *[]rawProcessSummary `json:"revisions"`
}

func (r rawProcessSummary) record(op string) (frame.Record, error) {
	if r.ID == nil {
		return nil, malformed(op, "process summary is missing id")
	}
	if r.Version == nil {
		return nil, malformed(op, "process summary is missing version")
	}
	if r.Name == nil {
		return nil, malformed(op, "process summary is missing name")
	}
	return frame.Record{
		"id":          *r.ID,
		"version":     *r.Version,
		"updatedOn":   Timestamp(r.UpdatedOn),
		"executedOn":  Timestamp(r.ExecutedOn),
		"name":        *r.Name,
		"description": r.Description,
		"taskType":    r.TaskType,
	}, nil
}

// flattenWorkflows turns a process query result into flat records. A
// summary carrying a revisions list contributes every revision as an
// independent record instead of itself, even when the list is empty.
func flattenWorkflows(op string, items []rawProcessSummary) ([]frame.Record, error) {
	result := []frame.Record{}
	for _, item := range items {
		if item.Revisions != nil {
			for _, rev := range *item.Revisions {
				rec, err := rev.record(op)
				if err != nil {
					return nil, err
				}
				result = append(result, rec)
			}
			continue
		}
		rec, err := item.record(op)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

// collectExecutionSteps flattens execution step metadata, ignoring files.
func collectExecutionSteps(exec *processExecution) []frame.Record {
	result := []frame.Record{}
	if exec == nil {
		return result
	}
	for _, s := range exec.Steps {
		result = append(result, frame.Record{
			"Name":         s.Name,
			"Tool":         s.Tool,
			"Operation":    s.Operation,
			"Status":       string(s.Status),
			"Started On":   s.StartedOn,
			"Completed On": s.CompletedOn,
		})
	}
	return result
}

// collectExecutionFiles flattens every file of every step, carrying the
// originating step's name and tool on each record. Steps without files
// contribute nothing.
func collectExecutionFiles(exec *processExecution) []frame.Record {
	result := []frame.Record{}
	if exec == nil {
		return result
	}
	for _, s := range exec.Steps {
		for _, f := range s.Files {
			partKey := ""
			if f.OutputPartKey != nil {
				partKey = *f.OutputPartKey
			}
			result = append(result, frame.Record{
				"Id":              f.ID,
				"Type":            f.Type,
				"Output Part Key": partKey,
				"Step":            s.Name,
				"Tool":            s.Tool,
				"Name":            f.Name,
				"Size":            f.Size,
			})
		}
	}
	return result
}
