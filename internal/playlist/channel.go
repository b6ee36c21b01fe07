package playlist

// Channel is one playable entry of the active channel list, produced by
// the M3U parser or the Xtream client and immutable afterwards. ID is only
// present for provider-sourced channels (the stream identifier); EPGID is
// the provider's guide identifier and may differ from both ID and the
// XMLTV channel attribute.
type Channel struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Logo  string `json:"logo,omitempty"`
	Group string `json:"group"`
	URL   string `json:"url"`
	EPGID string `json:"epgId,omitempty"`
}

const (
	DefaultName  = "Unknown Channel"
	DefaultGroup = "Uncategorized"
)
