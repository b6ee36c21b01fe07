package epg

import "time"

type NowNext struct {
	Current *Programme `json:"current"`
	Next    *Programme `json:"next"`
}

// CurrentAndNext scans a time-ordered bucket for the listing whose
// [start, end) interval contains now, together with its successor. When
// nothing is airing, the first future listing becomes Next; when the whole
// guide is in the past, the last listing becomes Current.
func CurrentAndNext(listings []Programme, now time.Time) NowNext {
	if len(listings) == 0 {
		return NowNext{}
	}

	for i := range listings {
		start := ParseTime(listings[i].Start)
		end := ParseTime(listings[i].End)

		if !start.After(now) && end.After(now) {
			result := NowNext{Current: &listings[i]}
			if i+1 < len(listings) {
				result.Next = &listings[i+1]
			}
			return result
		}

		if start.After(now) {
			return NowNext{Next: &listings[i]}
		}
	}

	return NowNext{Current: &listings[len(listings)-1]}
}
