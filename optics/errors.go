package optics

import "fmt"

// CompileError reports a malformed optic script with the offending line and
// construct. It is returned at compile time so the scorer stays total over
// any compiled optic.
type CompileError struct {
	Line      int
	Construct string
	Msg       string
}

func (e *CompileError) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("optic compile: line %d: %s: %s", e.Line, e.Construct, e.Msg)
	}
	return fmt.Sprintf("optic compile: line %d: %s", e.Line, e.Msg)
}

func compileErrf(line int, construct, format string, args ...any) *CompileError {
	return &CompileError{Line: line, Construct: construct, Msg: fmt.Sprintf(format, args...)}
}
