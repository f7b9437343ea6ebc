package mtl

import "fmt"

// ParseError reports an invalid state transition or mismatched group/object
// nesting in a metadata file. It carries the offending line and the name of
// the parser state at the time of failure.
type ParseError struct {
	Line  string
	State string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("mtl: %s (state '%s')", e.Msg, e.State)
	}
	return fmt.Sprintf("mtl: %s (state '%s'): %s", e.Msg, e.State, e.Line)
}

// NotFoundError reports that no metadata file matched the expected pattern in
// a directory, or that a location is neither a file nor a directory.
type NotFoundError struct {
	Location string
	Pattern  string
}

func (e *NotFoundError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("mtl: no files matching metadata file pattern %s in directory %s", e.Pattern, e.Location)
	}
	return fmt.Sprintf("mtl: %s is neither a metadata file nor a directory containing one", e.Location)
}
