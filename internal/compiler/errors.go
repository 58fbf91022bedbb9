package compiler

import "fmt"

// CompilationError is the single top-level error type the compile entry
// points return. Stage names the phase that failed; the causal chain is
// preserved through Unwrap.
type CompilationError struct {
	Stage string
	Err   error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation failed during %s: %v", e.Stage, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func compileErr(stage string, err error) *CompilationError {
	return &CompilationError{Stage: stage, Err: err}
}
