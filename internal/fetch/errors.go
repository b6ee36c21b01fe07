package fetch

import "fmt"

// Error means every attempt of the fallback chain failed; Err carries the
// final underlying cause.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("all fetch attempts failed for %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FormatError means the transport succeeded but the payload failed the
// sanity check: no XML prologue and an error-indicating marker present.
type FormatError struct {
	URL    string
	Marker string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("payload from %s does not look like XMLTV (found %q)", e.URL, e.Marker)
}
