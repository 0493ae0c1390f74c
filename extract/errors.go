package extract

import "fmt"

// FetchError reports that the source document could not be retrieved.
// Retry policy belongs to the caller; the pipeline never retries.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch document %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that the source document could not be opened or
// decoded.
type ParseError struct {
	Page int // 0 when the document itself is unreadable
	Err  error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("parse page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("parse document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvariantError reports a violated pipeline invariant, such as a splice
// of two tiles whose bitmaps disagree on the non-splice axis. It signals a
// logic bug or unexpected tile geometry and always aborts the run.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", e.Op, e.Detail)
}
