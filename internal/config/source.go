package config

import (
	"fmt"
	"strings"
)

const (
	SourceTypeM3U    = "m3u"
	SourceTypeXtream = "xtream"
)

// Source selects where the channel list comes from: a static M3U playlist
// URL or an Xtream-Codes account. Exactly one of the two must be configured.
type Source struct {
	Type   string `yaml:"type"`
	URL    string `yaml:"url,omitempty"`
	Xtream Xtream `yaml:"xtream,omitempty"`
}

type Xtream struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (s *Source) Validate() error {
	switch s.Type {
	case "":
		// No source configured at startup is fine, ingestion can be
		// triggered through the API later.
		return nil
	case SourceTypeM3U:
		if s.URL == "" {
			return fmt.Errorf("m3u source requires url")
		}
	case SourceTypeXtream:
		return s.Xtream.Validate()
	default:
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
	return nil
}

func (x *Xtream) Validate() error {
	if x.BaseURL == "" {
		return fmt.Errorf("xtream source requires base_url")
	}
	if !strings.HasPrefix(x.BaseURL, "http://") && !strings.HasPrefix(x.BaseURL, "https://") {
		return fmt.Errorf("xtream base_url must start with http:// or https://")
	}
	if x.Username == "" {
		return fmt.Errorf("xtream source requires username")
	}
	if x.Password == "" {
		return fmt.Errorf("xtream source requires password")
	}
	return nil
}
