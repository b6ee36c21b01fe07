package epg

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned for blank XMLTV input.
var ErrEmptyDocument = errors.New("xmltv document is empty")

// MalformedXMLError means the document failed the structural validity
// gate: either the XML decoder reported an error or the document carries
// neither a root guide element nor any programme element.
type MalformedXMLError struct {
	Err error
}

func (e *MalformedXMLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed xmltv document: %v", e.Err)
	}
	return "document does not appear to be valid XMLTV"
}

func (e *MalformedXMLError) Unwrap() error {
	return e.Err
}
