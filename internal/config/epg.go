package config

import (
	"fmt"
	"time"

	"zapp/internal/config/common"
)

// EPG controls guide acquisition and the staleness policy. A custom URL
// overrides the provider's xmltv.php endpoint.
type EPG struct {
	URL            string          `yaml:"url,omitempty"`
	StaleAfter     common.Duration `yaml:"stale_after"`
	CheckInterval  common.Duration `yaml:"check_interval"`
	ShortEPGFanout int             `yaml:"short_epg_fanout"`
}

func (e *EPG) Validate() error {
	if time.Duration(e.StaleAfter) <= 0 {
		return fmt.Errorf("stale_after must be positive")
	}
	if time.Duration(e.CheckInterval) <= 0 {
		return fmt.Errorf("check_interval must be positive")
	}
	if e.ShortEPGFanout <= 0 {
		return fmt.Errorf("short_epg_fanout must be positive")
	}
	return nil
}
