package slipo

import (
	"encoding/json"
	"time"
)

// ProcessStatus represents the execution state of a workflow instance.
type ProcessStatus string

const (
	StatusUnknown   ProcessStatus = "UNKNOWN"
	StatusRunning   ProcessStatus = "RUNNING"
	StatusCompleted ProcessStatus = "COMPLETED"
	StatusFailed    ProcessStatus = "FAILED"
	StatusStopped   ProcessStatus = "STOPPED"
)

// IsTerminal returns true if the status is a final state.
func (s ProcessStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

// SLIPO Toolkit component identifiers.
const (
	ToolTripleGeo        = "TRIPLEGEO"
	ToolLimes            = "LIMES"
	ToolFagi             = "FAGI"
	ToolDeer             = "DEER"
	ToolReverseTripleGeo = "REVERSE_TRIPLEGEO"
)

// OperationRegister marks steps that only register existing data in the
// catalog; they never produce a new addressable artifact.
const OperationRegister = "REGISTER"

// Execution file types produced while a workflow runs.
const (
	FileTypeConfiguration = "CONFIGURATION"
	FileTypeInput         = "INPUT"
	FileTypeOutput        = "OUTPUT"
	FileTypeSample        = "SAMPLE"
	FileTypeKPI           = "KPI"
	FileTypeQA            = "QA"
	FileTypeLog           = "LOG"
)

// StepDefinition is the static description of one pipeline step inside a
// process definition. OutputKey is nil for steps whose result is not an
// addressable dataset (export and register operations).
type StepDefinition struct {
	Key       string
	Name      string
	Tool      string
	Operation string
	OutputKey *string
	InputKeys []*string
}

// StepExecution is the runtime record of one definition step that ran,
// linked to its definition by Key.
type StepExecution struct {
	Key         string
	Name        string
	Tool        string
	Operation   string
	Status      ProcessStatus
	StartedOn   *time.Time
	CompletedOn *time.Time
	Files       []ExecutionFile
}

// ExecutionFile is a file produced by a step. OutputPartKey is a semantic
// tag distinguishing multiple outputs of the same step ("transformed",
// "accepted", ...) and may be absent.
type ExecutionFile struct {
	ID            int64
	Type          string
	OutputPartKey *string
	Name          string
	Size          int64
}

// FileEntry is one file discovered by flattening the remote user
// file-system tree. Ephemeral: rebuilt on every browse call.
type FileEntry struct {
	Name     string
	Modified *time.Time
	Size     int64
	Path     string
}

// processDefinition is the normalized static half of a process record.
type processDefinition struct {
	ID          int64
	Version     int64
	Name        string
	Description string
	TaskType    string
	Steps       []StepDefinition
}

// processExecution is the normalized runtime half of a process record.
type processExecution struct {
	ID          int64
	Status      ProcessStatus
	SubmittedOn *time.Time
	StartedOn   *time.Time
	CompletedOn *time.Time
	Steps       []StepExecution
}

// Raw wire mirrors. Required fields are pointers so their absence can be
// told apart from a zero value and reported as a malformed-response fault.

type rawStepDefinition struct {
	Key       *string   `json:"key"`
	Name      string    `json:"name"`
	Tool      *string   `json:"tool"`
	Operation *string   `json:"operation"`
	OutputKey *string   `json:"outputKey"`
	InputKeys []*string `json:"input"`
}

type rawStepExecution struct {
	Key         *string            `json:"key"`
	Name        *string            `json:"name"`
	Tool        *string            `json:"tool"`
	Operation   string             `json:"operation"`
	Status      string             `json:"status"`
	StartedOn   *float64           `json:"startedOn"`
	CompletedOn *float64           `json:"completedOn"`
	Files       []rawExecutionFile `json:"files"`
}

type rawExecutionFile struct {
	ID            *int64  `json:"id"`
	Type          *string `json:"type"`
	OutputPartKey *string `json:"outputPartKey"`
	Name          *string `json:"name"`
	Size          *int64  `json:"size"`
}

type rawDefinition struct {
	ID          *int64              `json:"id"`
	Version     *int64              `json:"version"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	TaskType    string              `json:"taskType"`
	Steps       []rawStepDefinition `json:"steps"`
}

type rawExecution struct {
	ID          int64              `json:"id"`
	Status      string             `json:"status"`
	SubmittedOn *float64           `json:"submittedOn"`
	StartedOn   *float64           `json:"startedOn"`
	CompletedOn *float64           `json:"completedOn"`
	Steps       []rawStepExecution `json:"steps"`
}

func (r rawDefinition) normalize(op string) (processDefinition, error) {
	if r.ID == nil {
		return processDefinition{}, malformed(op, "process record is missing id")
	}
	if r.Version == nil {
		return processDefinition{}, malformed(op, "process record is missing version")
	}

	def := processDefinition{
		ID:          *r.ID,
		Version:     *r.Version,
		Name:        r.Name,
		Description: r.Description,
		TaskType:    r.TaskType,
	}
	for _, s := range r.Steps {
		if s.Key == nil {
			return processDefinition{}, malformed(op, "step definition is missing key")
		}
		if s.Tool == nil || s.Operation == nil {
			return processDefinition{}, malformed(op, "step definition is missing tool or operation")
		}
		def.Steps = append(def.Steps, StepDefinition{
			Key:       *s.Key,
			Name:      s.Name,
			Tool:      *s.Tool,
			Operation: *s.Operation,
			OutputKey: s.OutputKey,
			InputKeys: s.InputKeys,
		})
	}
	return def, nil
}

func (r rawExecution) normalize(op string) (*processExecution, error) {
	exec := &processExecution{
		ID:          r.ID,
		Status:      parseStatus(r.Status),
		SubmittedOn: Timestamp(r.SubmittedOn),
		StartedOn:   Timestamp(r.StartedOn),
		CompletedOn: Timestamp(r.CompletedOn),
	}
	for _, s := range r.Steps {
		if s.Key == nil {
			return nil, malformed(op, "execution step is missing key")
		}
		if s.Name == nil || s.Tool == nil {
			return nil, malformed(op, "execution step is missing name or tool")
		}
		step := StepExecution{
			Key:         *s.Key,
			Name:        *s.Name,
			Tool:        *s.Tool,
			Operation:   s.Operation,
			Status:      parseStatus(s.Status),
			StartedOn:   Timestamp(s.StartedOn),
			CompletedOn: Timestamp(s.CompletedOn),
		}
		for _, f := range s.Files {
			nf, err := f.normalize(op)
			if err != nil {
				return nil, err
			}
			step.Files = append(step.Files, nf)
		}
		exec.Steps = append(exec.Steps, step)
	}
	return exec, nil
}

func (r rawExecutionFile) normalize(op string) (ExecutionFile, error) {
	if r.ID == nil {
		return ExecutionFile{}, malformed(op, "execution file is missing id")
	}
	if r.Name == nil {
		return ExecutionFile{}, malformed(op, "execution file is missing name")
	}
	if r.Type == nil {
		return ExecutionFile{}, malformed(op, "execution file is missing type")
	}
	if r.Size == nil {
		return ExecutionFile{}, malformed(op, "execution file is missing size")
	}
	return ExecutionFile{
		ID:            *r.ID,
		Type:          *r.Type,
		OutputPartKey: r.OutputPartKey,
		Name:          *r.Name,
		Size:          *r.Size,
	}, nil
}

// parseStatus maps a wire status to a ProcessStatus, defaulting to UNKNOWN
// for empty or unrecognized values.
func parseStatus(s string) ProcessStatus {
	switch ProcessStatus(s) {
	case StatusRunning, StatusCompleted, StatusFailed, StatusStopped, StatusUnknown:
		return ProcessStatus(s)
	default:
		return StatusUnknown
	}
}

// apiError is one entry of the envelope error list.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// envelope is the response wrapper used by every SLIPO API endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}
