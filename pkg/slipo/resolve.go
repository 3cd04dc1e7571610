package slipo

// defaultPartKeys maps each toolkit component to the part key of its
// canonical output. Tools outside this table have no default; resolution
// then requires an explicit part key from the caller.
var defaultPartKeys = map[string]string{
	ToolTripleGeo:        "transformed",
	ToolLimes:            "accepted",
	ToolFagi:             "fused",
	ToolDeer:             "enriched",
	ToolReverseTripleGeo: "transformed",
}

// DefaultPartKey returns the default output part key for a toolkit
// component, or false if the tool has no default.
func DefaultPartKey(tool string) (string, bool) {
	key, ok := defaultPartKeys[tool]
	return key, ok
}

// resolveOutput determines the single canonical output file of a process
// from its step-dependency graph.
//
// The terminal step is found by set difference over output keys: keys
// produced by any non-REGISTER step minus keys consumed as input by any
// non-REGISTER step. REGISTER steps are transparent on both sides: they
// only ingest existing data, so a registration of the final artifact must
// not mark its key as consumed. This works because the orchestrator only
// produces simple DAGs
// converging to at most one sink; every ambiguous topology (no terminal
// key, several terminal keys, duplicate definitions or executions for the
// terminal key, zero or several part-key matches) is rejected with a
// false result rather than guessed at. None of these conditions is an
// error: callers branch on the boolean.
func resolveOutput(def processDefinition, exec *processExecution, partKey string) (ExecutionFile, string, bool) {
	if exec == nil {
		return ExecutionFile{}, "", false
	}

	// Keys consumed as input by non-REGISTER steps. A REGISTER step
	// reading a key does not make that key an intermediate result.
	inputs := make(map[string]bool)
	for _, s := range def.Steps {
		if s.Operation == OperationRegister {
			continue
		}
		for _, in := range s.InputKeys {
			if in != nil {
				inputs[*in] = true
			}
		}
	}

	// Keys produced by non-REGISTER steps. REGISTER only ingests existing
	// data and never counts as producing a new artifact.
	outputs := make(map[string]bool)
	for _, s := range def.Steps {
		if s.Operation == OperationRegister {
			continue
		}
		if s.OutputKey != nil {
			outputs[*s.OutputKey] = true
		}
	}

	// Pipeline sinks: produced but never consumed.
	var terminal []string
	for key := range outputs {
		if !inputs[key] {
			terminal = append(terminal, key)
		}
	}
	if len(terminal) != 1 {
		return ExecutionFile{}, "", false
	}
	terminalKey := terminal[0]

	// Retried or superseded steps can leave several definitions sharing an
	// output key; refuse to pick one arbitrarily.
	var defMatch *StepDefinition
	for i := range def.Steps {
		s := &def.Steps[i]
		if s.OutputKey != nil && *s.OutputKey == terminalKey {
			if defMatch != nil {
				return ExecutionFile{}, "", false
			}
			defMatch = s
		}
	}
	if defMatch == nil {
		return ExecutionFile{}, "", false
	}

	var execMatch *StepExecution
	for i := range exec.Steps {
		s := &exec.Steps[i]
		if s.Key == defMatch.Key {
			if execMatch != nil {
				return ExecutionFile{}, "", false
			}
			execMatch = s
		}
	}
	if execMatch == nil {
		return ExecutionFile{}, "", false
	}

	if partKey == "" {
		var ok bool
		partKey, ok = DefaultPartKey(execMatch.Tool)
		if !ok {
			return ExecutionFile{}, "", false
		}
	}

	var fileMatch *ExecutionFile
	for i := range execMatch.Files {
		f := &execMatch.Files[i]
		if f.OutputPartKey != nil && *f.OutputPartKey == partKey {
			if fileMatch != nil {
				return ExecutionFile{}, "", false
			}
			fileMatch = f
		}
	}
	if fileMatch == nil {
		return ExecutionFile{}, "", false
	}

	return *fileMatch, partKey, true
}
