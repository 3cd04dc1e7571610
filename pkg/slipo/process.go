package slipo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/me/slipo/pkg/frame"
)

// Process is an immutable view over one workflow record: its static
// definition plus, when the workflow has run, the matching execution.
// All derived views are computed on demand from the owned pair, never
// cached, so they always reflect the record as fetched.
type Process struct {
	definition processDefinition
	execution  *processExecution
}

// ID returns the process unique id.
func (p *Process) ID() int64 {
	return p.definition.ID
}

// Version returns the process revision.
func (p *Process) Version() int64 {
	return p.definition.Version
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.definition.Name
}

// TaskType returns the process task type.
func (p *Process) TaskType() string {
	return p.definition.TaskType
}

// Status returns the execution status, or UNKNOWN when the workflow has
// not run.
func (p *Process) Status() ProcessStatus {
	if p.execution == nil {
		return StatusUnknown
	}
	return p.execution.Status
}

// SubmittedOn returns when the execution was submitted, or nil when the
// workflow has not run.
func (p *Process) SubmittedOn() *time.Time {
	if p.execution == nil {
		return nil
	}
	return p.execution.SubmittedOn
}

// StartedOn returns when the execution started, or nil when the workflow
// has not run.
func (p *Process) StartedOn() *time.Time {
	if p.execution == nil {
		return nil
	}
	return p.execution.StartedOn
}

// CompletedOn returns when the execution finished, or nil while it is
// still running or has not run.
func (p *Process) CompletedOn() *time.Time {
	if p.execution == nil {
		return nil
	}
	return p.execution.CompletedOn
}

// Steps returns the execution steps as a table sorted by step name, with
// columns [Name, Tool, Operation, Status, Started On, Completed On].
// The table is empty when the workflow has not run.
func (p *Process) Steps() *frame.Frame {
	f := frame.New(
		[]string{"Name", "Tool", "Operation", "Status", "Started On", "Completed On"},
		collectExecutionSteps(p.execution),
	)
	sorted, _ := f.Sort(true, "Name")
	return sorted
}

// Files returns every file of every execution step as a table sorted by
// [Type, Id], with columns [Id, Step, Tool, Type, Output Part Key, Name,
// Size]. With formatSize set, the Size column is rendered human-readable.
func (p *Process) Files(formatSize bool) *frame.Frame {
	f := frame.New(
		[]string{"Id", "Step", "Tool", "Type", "Output Part Key", "Name", "Size"},
		collectExecutionFiles(p.execution),
	)
	sorted, _ := f.Sort(true, "Type", "Id")
	if formatSize {
		sorted, _ = sorted.Apply("Size", func(v any) any {
			return FormatSize(float64(v.(int64)))
		})
	}
	return sorted
}

// Output resolves the canonical terminal output file of the process. With
// an empty partKey the per-tool default part key is applied. The result
// is absent (ok false) whenever the step graph does not resolve to exactly
// one file; that is an expected condition, not an error.
func (p *Process) Output(partKey string) (*StepFile, bool) {
	file, _, ok := resolveOutput(p.definition, p.execution, partKey)
	if !ok {
		return nil, false
	}
	// Identity always comes from the definition: older execution payloads
	// may lack identifying fields.
	return &StepFile{
		processID:      p.definition.ID,
		processVersion: p.definition.Version,
		file:           file,
	}, true
}

// String implements fmt.Stringer.
func (p *Process) String() string {
	return fmt.Sprintf("Process (%d, %d) status is %s", p.ID(), p.Version(), p.Status())
}

// StepFile is a live handle on one output file of a process execution,
// used to address the dataset in subsequent operation calls. It has no
// independent lifecycle and is immutable.
type StepFile struct {
	processID      int64
	processVersion int64
	file           ExecutionFile
}

// ID returns the file unique id.
func (f *StepFile) ID() int64 {
	return f.file.ID
}

// ProcessID returns the owning process id.
func (f *StepFile) ProcessID() int64 {
	return f.processID
}

// ProcessVersion returns the owning process revision.
func (f *StepFile) ProcessVersion() int64 {
	return f.processVersion
}

// Name returns the file name.
func (f *StepFile) Name() string {
	return f.file.Name
}

// OutputType returns the execution file type.
func (f *StepFile) OutputType() string {
	return f.file.Type
}

// OutputPartKey returns the part key tag of the file, or "" when absent.
func (f *StepFile) OutputPartKey() string {
	if f.file.OutputPartKey == nil {
		return ""
	}
	return *f.file.OutputPartKey
}

// Size returns the file size in bytes.
func (f *StepFile) Size() int64 {
	return f.file.Size
}

// String implements fmt.Stringer.
func (f *StepFile) String() string {
	return fmt.Sprintf("File (%d, %s)", f.ID(), f.Name())
}

// decodeProcess normalizes the historical wire shapes of a process record
// into one Process. Three shapes exist:
//
//   - a {process, execution} pair (execution may be null),
//   - a definition with the execution embedded under "execution",
//   - the flat operation status carrying processId/processVersion.
//
// Normalizing here keeps the rest of the package on a single
// representation.
func decodeProcess(op string, raw json.RawMessage) (*Process, error) {
	var probe struct {
		Process   json.RawMessage `json:"process"`
		Execution json.RawMessage `json:"execution"`
		ProcessID *int64          `json:"processId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, WrapError(op, fmt.Errorf("decoding process record: %w", err))
	}

	switch {
	case probe.Process != nil:
		return decodeProcessPair(op, probe.Process, probe.Execution)
	case probe.ProcessID != nil:
		return decodeFlatStatus(op, raw)
	default:
		return decodeProcessPair(op, raw, probe.Execution)
	}
}

func decodeProcessPair(op string, rawDef, rawExec json.RawMessage) (*Process, error) {
	var rd rawDefinition
	if err := json.Unmarshal(rawDef, &rd); err != nil {
		return nil, WrapError(op, fmt.Errorf("decoding process definition: %w", err))
	}
	def, err := rd.normalize(op)
	if err != nil {
		return nil, err
	}

	p := &Process{definition: def}
	if len(rawExec) > 0 && string(rawExec) != "null" {
		var re rawExecution
		if err := json.Unmarshal(rawExec, &re); err != nil {
			return nil, WrapError(op, fmt.Errorf("decoding process execution: %w", err))
		}
		exec, err := re.normalize(op)
		if err != nil {
			return nil, err
		}
		p.execution = exec
	}
	return p, nil
}

// decodeFlatStatus handles the single-row status returned by operation
// submissions: identity lives in processId/processVersion and the
// execution fields sit at the top level.
func decodeFlatStatus(op string, raw json.RawMessage) (*Process, error) {
	var fs struct {
		ID             int64    `json:"id"`
		ProcessID      *int64   `json:"processId"`
		ProcessVersion *int64   `json:"processVersion"`
		Status         string   `json:"status"`
		TaskType       string   `json:"taskType"`
		Name           string   `json:"name"`
		SubmittedOn    *float64 `json:"submittedOn"`
		StartedOn      *float64 `json:"startedOn"`
		CompletedOn    *float64 `json:"completedOn"`
	}
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil, WrapError(op, fmt.Errorf("decoding operation status: %w", err))
	}
	if fs.ProcessID == nil {
		return nil, malformed(op, "operation status is missing processId")
	}
	if fs.ProcessVersion == nil {
		return nil, malformed(op, "operation status is missing processVersion")
	}

	return &Process{
		definition: processDefinition{
			ID:       *fs.ProcessID,
			Version:  *fs.ProcessVersion,
			Name:     fs.Name,
			TaskType: fs.TaskType,
		},
		execution: &processExecution{
			ID:          fs.ID,
			Status:      parseStatus(fs.Status),
			SubmittedOn: Timestamp(fs.SubmittedOn),
			StartedOn:   Timestamp(fs.StartedOn),
			CompletedOn: Timestamp(fs.CompletedOn),
		},
	}, nil
}
