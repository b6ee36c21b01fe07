package epg

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

type xmltvProgramme struct {
	Channel  string       `xml:"channel,attr"`
	Start    string       `xml:"start,attr"`
	Stop     string       `xml:"stop,attr"`
	Title    []xmltvValue `xml:"title"`
	Desc     []xmltvValue `xml:"desc"`
	Category []xmltvValue `xml:"category"`
}

type xmltvValue struct {
	Value string `xml:",chardata"`
}

// Parse turns an XMLTV document into a Guide. Parsing is streaming, one
// programme element at a time, so multi-megabyte guides never materialize
// as a token tree. Programme entries without a channel attribute are
// skipped; missing title/desc/category children default to empty strings.
// Buckets keep document order for equal start times (stable sort).
func Parse(xmlText string) (Guide, error) {
	if strings.TrimSpace(xmlText) == "" {
		return nil, ErrEmptyDocument
	}

	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	guide := make(Guide)

	sawRoot := false
	programmes := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedXMLError{Err: err}
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "tv":
			sawRoot = true
		case "programme":
			var prog xmltvProgramme
			if err := decoder.DecodeElement(&prog, &start); err != nil {
				return nil, &MalformedXMLError{Err: err}
			}
			programmes++

			if prog.Channel == "" {
				continue
			}

			guide[prog.Channel] = append(guide[prog.Channel], Programme{
				Start:       prog.Start,
				End:         prog.Stop,
				Title:       firstValue(prog.Title),
				Description: firstValue(prog.Desc),
				Category:    firstValue(prog.Category),
			})
		}
	}

	if !sawRoot && programmes == 0 {
		return nil, &MalformedXMLError{}
	}

	for channel := range guide {
		listings := guide[channel]
		sort.SliceStable(listings, func(i, j int) bool {
			return ParseTime(listings[i].Start).Before(ParseTime(listings[j].Start))
		})
	}

	return guide, nil
}

func firstValue(values []xmltvValue) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v.Value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
