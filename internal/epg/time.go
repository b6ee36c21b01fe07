package epg

import "time"

const compactTimeLayout = "20060102150405"

// ParseTime interprets the first 14 characters of an XMLTV timestamp as
// YYYYMMDDHHmmss in UTC. A trailing timezone offset is discarded, so
// non-UTC feeds come out time-shifted; preserved as-is until there is a
// product decision on honoring offsets. Inputs shorter than 14 characters
// or unparsable parse to the epoch origin, which sorts them first.
func ParseTime(s string) time.Time {
	if len(s) < 14 {
		return time.Unix(0, 0).UTC()
	}

	parsed, err := time.Parse(compactTimeLayout, s[:14])
	if err != nil {
		return time.Unix(0, 0).UTC()
	}

	return parsed
}
