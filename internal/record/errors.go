package record

import "fmt"

// ExtractionError reports that a document could not be turned into a
// Record at all: an unsupported input kind, or the text extractor failed
// irrecoverably. A field that merely fails to match a pattern is not an
// error; it degrades to an empty value.
type ExtractionError struct {
	Kind string // declared file kind or document variant
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed for kind %q", e.Kind)
	}
	return fmt.Sprintf("extraction failed for kind %q: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// InsufficientInputError reports that a case carried fewer inputs than
// verification requires. It is returned as a value, never panicked, so
// callers can surface a partial result to the user.
type InsufficientInputError struct {
	What     string // what was being counted, e.g. "documents" or "line items"
	Required int
	Found    int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("insufficient input: %d %s required, found %d", e.Required, e.What, e.Found)
}

// VerificationError wraps an unexpected failure during scoring with the
// case it belongs to. Verification is deterministic, so there is no retry.
type VerificationError struct {
	CaseID string
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for case %s: %v", e.CaseID, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
