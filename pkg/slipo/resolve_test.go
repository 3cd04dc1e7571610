package slipo

import "testing"

func strptr(s string) *string { return &s }

func defStep(key, tool, operation string, out *string, in ...*string) StepDefinition {
	return StepDefinition{
		Key:       key,
		Name:      key,
		Tool:      tool,
		Operation: operation,
		OutputKey: out,
		InputKeys: in,
	}
}

func execStep(key, tool string, files ...ExecutionFile) StepExecution {
	return StepExecution{
		Key:       key,
		Name:      key,
		Tool:      tool,
		Operation: "TRANSFORM",
		Status:    StatusCompleted,
		Files:     files,
	}
}

func outFile(id int64, partKey string) ExecutionFile {
	return ExecutionFile{
		ID:            id,
		Type:          FileTypeOutput,
		OutputPartKey: strptr(partKey),
		Name:          "out.nt",
		Size:          100,
	}
}

// linearProcess is A -> B: A produces k1, B consumes k1 and produces k2.
func linearProcess() (processDefinition, *processExecution) {
	def := processDefinition{
		ID:      42,
		Version: 7,
		Steps: []StepDefinition{
			defStep("step-a", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("step-b", ToolLimes, "INTERLINK", strptr("k2"), strptr("k1")),
		},
	}
	exec := &processExecution{
		Status: StatusCompleted,
		Steps: []StepExecution{
			execStep("step-a", ToolTripleGeo, outFile(1, "transformed")),
			execStep("step-b", ToolLimes, outFile(2, "accepted")),
		},
	}
	return def, exec
}

func TestResolveOutput_LinearPipeline(t *testing.T) {
	def, exec := linearProcess()

	file, partKey, ok := resolveOutput(def, exec, "")
	if !ok {
		t.Fatal("resolveOutput failed on a linear pipeline")
	}
	// k2 is the sole unconsumed key, so step-b's file wins.
	if file.ID != 2 {
		t.Errorf("file ID = %d, want 2", file.ID)
	}
	if partKey != "accepted" {
		t.Errorf("part key = %q, want %q (LIMES default)", partKey, "accepted")
	}
}

func TestResolveOutput_ForkedGraph(t *testing.T) {
	// Two outputs, neither consumed: no single sink exists.
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("a", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("b", ToolTripleGeo, "TRANSFORM", strptr("k2")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("a", ToolTripleGeo, outFile(1, "transformed")),
		execStep("b", ToolTripleGeo, outFile(2, "transformed")),
	}}

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded on a forked graph")
	}
}

func TestResolveOutput_FullyConsumedGraph(t *testing.T) {
	// Every produced key is consumed downstream and the sink step has a
	// nil output key: no terminal key remains.
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("a", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("b", "INTERNAL", "EXPORT", nil, strptr("k1")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("a", ToolTripleGeo, outFile(1, "transformed")),
	}}

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded with no terminal key")
	}
}

func TestResolveOutput_RegisterStepExcluded(t *testing.T) {
	// The REGISTER step's output key must not count as a produced
	// artifact, leaving k1 as the single terminal key.
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("transform", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("register", "CATALOG", OperationRegister, strptr("k9"), strptr("k1")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("transform", ToolTripleGeo, outFile(5, "transformed")),
		execStep("register", "CATALOG"),
	}}

	file, _, ok := resolveOutput(def, exec, "")
	if !ok {
		t.Fatal("resolveOutput failed with a REGISTER sink")
	}
	if file.ID != 5 {
		t.Errorf("file ID = %d, want 5", file.ID)
	}
}

func TestResolveOutput_RegisteredPipelineTail(t *testing.T) {
	// A REGISTER step reading the final key must not mark it as consumed;
	// the pipeline stays resolvable to the last producing step.
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("a", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("b", ToolLimes, "INTERLINK", strptr("k2"), strptr("k1")),
			defStep("publish", "CATALOG", OperationRegister, nil, strptr("k2")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("a", ToolTripleGeo, outFile(1, "transformed")),
		execStep("b", ToolLimes, outFile(2, "accepted")),
		execStep("publish", "CATALOG"),
	}}

	file, partKey, ok := resolveOutput(def, exec, "")
	if !ok {
		t.Fatal("resolveOutput failed with a registered pipeline tail")
	}
	if file.ID != 2 {
		t.Errorf("file ID = %d, want 2", file.ID)
	}
	if partKey != "accepted" {
		t.Errorf("part key = %q, want %q", partKey, "accepted")
	}
}

func TestResolveOutput_DuplicateDefinitions(t *testing.T) {
	// Retried steps sharing an output key: refuse to pick arbitrarily.
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("try-1", ToolTripleGeo, "TRANSFORM", strptr("k1")),
			defStep("try-2", ToolTripleGeo, "TRANSFORM", strptr("k1")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("try-2", ToolTripleGeo, outFile(1, "transformed")),
	}}

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded with duplicate definitions")
	}
}

func TestResolveOutput_MissingExecutionStep(t *testing.T) {
	def, _ := linearProcess()
	exec := &processExecution{Steps: []StepExecution{
		execStep("step-a", ToolTripleGeo, outFile(1, "transformed")),
	}}

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded without the terminal execution step")
	}
}

func TestResolveOutput_DuplicateExecutionSteps(t *testing.T) {
	def, exec := linearProcess()
	exec.Steps = append(exec.Steps, execStep("step-b", ToolLimes, outFile(9, "accepted")))

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded with duplicate execution steps")
	}
}

func TestResolveOutput_AmbiguousPartKey(t *testing.T) {
	def, exec := linearProcess()
	exec.Steps[1].Files = append(exec.Steps[1].Files, outFile(3, "accepted"))

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput succeeded with two files sharing the part key")
	}
}

func TestResolveOutput_ExplicitPartKey(t *testing.T) {
	def, exec := linearProcess()
	exec.Steps[1].Files = append(exec.Steps[1].Files, outFile(3, "rejected"))

	file, partKey, ok := resolveOutput(def, exec, "rejected")
	if !ok {
		t.Fatal("resolveOutput failed with an explicit part key")
	}
	if file.ID != 3 || partKey != "rejected" {
		t.Errorf("got file %d part key %q, want file 3 part key rejected", file.ID, partKey)
	}
}

func TestResolveOutput_ToolWithoutDefault(t *testing.T) {
	def := processDefinition{
		Steps: []StepDefinition{
			defStep("a", "OSMRECONCILER", "TRANSFORM", strptr("k1")),
		},
	}
	exec := &processExecution{Steps: []StepExecution{
		execStep("a", "OSMRECONCILER", outFile(1, "reconciled")),
	}}

	if _, _, ok := resolveOutput(def, exec, ""); ok {
		t.Error("resolveOutput applied a default for an unknown tool")
	}
	if _, _, ok := resolveOutput(def, exec, "reconciled"); !ok {
		t.Error("resolveOutput failed with an explicit key for an unknown tool")
	}
}

func TestResolveOutput_NoExecution(t *testing.T) {
	def, _ := linearProcess()
	if _, _, ok := resolveOutput(def, nil, ""); ok {
		t.Error("resolveOutput succeeded without an execution")
	}
}

func TestDefaultPartKey(t *testing.T) {
	tests := []struct {
		tool string
		want string
		ok   bool
	}{
		{ToolTripleGeo, "transformed", true},
		{ToolLimes, "accepted", true},
		{ToolFagi, "fused", true},
		{ToolDeer, "enriched", true},
		{ToolReverseTripleGeo, "transformed", true},
		{"OSMRECONCILER", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got, ok := DefaultPartKey(tt.tool)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DefaultPartKey(%s) = (%q, %v), want (%q, %v)", tt.tool, got, ok, tt.want, tt.ok)
			}
		})
	}
}
