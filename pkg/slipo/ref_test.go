package slipo

import "testing"

func TestNormalizeInputs(t *testing.T) {
	handle := &StepFile{
		processID:      42,
		processVersion: 7,
		file:           ExecutionFile{ID: 11, Type: FileTypeOutput, Name: "links.nt"},
	}

	tests := []struct {
		name string
		in   Input
		want inputRef
	}{
		{
			name: "path",
			in:   PathInput("folder/pois.csv"),
			want: inputRef{Type: "FILESYSTEM", Path: "folder/pois.csv"},
		},
		{
			name: "catalog resource",
			in:   ResourceInput{ID: 3, Version: 2},
			want: inputRef{Type: "CATALOG", ID: 3, Version: 2},
		},
		{
			name: "file triple",
			in:   FileInput{ProcessID: 1, ProcessVersion: 2, FileID: 3},
			want: inputRef{Type: "OUTPUT", ProcessID: 1, ProcessVersion: 2, FileID: 3},
		},
		{
			name: "step file reduces to its triple",
			in:   handle,
			want: inputRef{Type: "OUTPUT", ProcessID: 42, ProcessVersion: 7, FileID: 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.wireRef(); got != tt.want {
				t.Errorf("wireRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeInputs_EachArgumentInIsolation(t *testing.T) {
	refs := normalizeInputs(
		PathInput("left.nt"),
		ResourceInput{ID: 9, Version: 1},
		FileInput{ProcessID: 5, ProcessVersion: 1, FileID: 77},
	)
	if len(refs) != 3 {
		t.Fatalf("refs = %d, want 3", len(refs))
	}
	if refs[0].Type != "FILESYSTEM" || refs[1].Type != "CATALOG" || refs[2].Type != "OUTPUT" {
		t.Errorf("ref types = %s/%s/%s", refs[0].Type, refs[1].Type, refs[2].Type)
	}
}
