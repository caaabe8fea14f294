// Package symerr implements the error taxonomy of spec.md §7: each variant
// is a distinct type carrying the contextual fields the spec names, so
// callers can errors.As into the variant they care about instead of
// string-matching messages.
package symerr

import "fmt"

// InvalidInput reports an empty root-files list or a referenced file that
// does not exist. Fatal to the caller.
type InvalidInput struct {
	Reason string
	Path   string
}

func (e *InvalidInput) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s (%s)", e.Reason, e.Path)
}

// CheckerError reports that the underlying type-checker failed on a single
// file. Recoverable: the caller drops the file and continues.
type CheckerError struct {
	Path string
	Err  error
}

func (e *CheckerError) Error() string {
	return fmt.Sprintf("checker error in %s: %v", e.Path, e.Err)
}

func (e *CheckerError) Unwrap() error { return e.Err }

// DuplicateSymbol reports insert_file being called while a symbol id already
// exists in the table. Indicates a programming error; fatal.
type DuplicateSymbol struct {
	ID string
}

func (e *DuplicateSymbol) Error() string {
	return fmt.Sprintf("duplicate symbol id: %s", e.ID)
}

// MissingEntryPoint reports an entry id with no matching symbol. Non-fatal;
// recorded on the result so reports can flag it.
type MissingEntryPoint struct {
	ID string
}

func (e *MissingEntryPoint) Error() string {
	return fmt.Sprintf("entry point not found: %s", e.ID)
}

// HasDiagnostics reports that strict mode was requested and the checker
// produced at least one diagnostic. Fatal.
type HasDiagnostics struct {
	Count int
}

func (e *HasDiagnostics) Error() string {
	return fmt.Sprintf("analysis has %d diagnostic(s) in strict mode", e.Count)
}

// Cancelled reports that a cooperative cancellation signal tripped mid
// operation.
type Cancelled struct {
	Stage string
}

func (e *Cancelled) Error() string {
	if e.Stage == "" {
		return "cancelled"
	}
	return fmt.Sprintf("cancelled during %s", e.Stage)
}
