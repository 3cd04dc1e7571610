package slipo

// Input identifies one dataset passed to a toolkit operation. It is a
// closed sum: a file-system path, a catalog resource revision, a process
// output file triple, or a live StepFile handle. Every variant reduces to
// one wire form through a single normalization, and each positional
// argument of a multi-input operation is normalized in isolation.
type Input interface {
	wireRef() inputRef
}

// Dataset reference kinds on the wire.
const (
	refFilesystem = "FILESYSTEM"
	refCatalog    = "CATALOG"
	refOutput     = "OUTPUT"
)

// inputRef is the wire form of a dataset reference.
type inputRef struct {
	Type           string `json:"type"`
	Path           string `json:"path,omitempty"`
	ID             int64  `json:"id,omitempty"`
	Version        int64  `json:"version,omitempty"`
	ProcessID      int64  `json:"processId,omitempty"`
	ProcessVersion int64  `json:"processVersion,omitempty"`
	FileID         int64  `json:"fileId,omitempty"`
}

// PathInput addresses a dataset by its path on the remote user file system.
type PathInput string

func (p PathInput) wireRef() inputRef {
	return inputRef{Type: refFilesystem, Path: string(p)}
}

// ResourceInput addresses a catalog resource by id and revision.
type ResourceInput struct {
	ID      int64
	Version int64
}

func (r ResourceInput) wireRef() inputRef {
	return inputRef{Type: refCatalog, ID: r.ID, Version: r.Version}
}

// FileInput addresses one file of a process execution by the
// (process id, process revision, file id) triple.
type FileInput struct {
	ProcessID      int64
	ProcessVersion int64
	FileID         int64
}

func (f FileInput) wireRef() inputRef {
	return inputRef{
		Type:           refOutput,
		ProcessID:      f.ProcessID,
		ProcessVersion: f.ProcessVersion,
		FileID:         f.FileID,
	}
}

// wireRef reduces a live StepFile handle to its triple form.
func (f *StepFile) wireRef() inputRef {
	return FileInput{
		ProcessID:      f.processID,
		ProcessVersion: f.processVersion,
		FileID:         f.file.ID,
	}.wireRef()
}

// normalizeInputs reduces each argument to its wire form independently.
func normalizeInputs(inputs ...Input) []inputRef {
	refs := make([]inputRef, len(inputs))
	for i, in := range inputs {
		refs[i] = in.wireRef()
	}
	return refs
}
