package epg

// Programme is one guide entry. Start and End keep the raw XMLTV compact
// timestamp form; ParseTime is the single place that interprets it.
type Programme struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Guide maps the raw XMLTV channel attribute to that channel's listings,
// sorted ascending by parsed start time.
type Guide map[string][]Programme

// Programmes returns the total number of listings across all buckets.
func (g Guide) Programmes() int {
	count := 0
	for _, listings := range g {
		count += len(listings)
	}
	return count
}
