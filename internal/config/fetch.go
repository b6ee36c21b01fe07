package config

import (
	"fmt"
	"strings"
	"time"

	"zapp/internal/config/common"
)

// Fetch configures the two-tier fetch fallback: a direct attempt followed
// by one through a public CORS relay when the origin refuses us.
type Fetch struct {
	DirectTimeout common.Duration    `yaml:"direct_timeout"`
	RelayTimeout  common.Duration    `yaml:"relay_timeout"`
	RelayURL      string             `yaml:"relay_url"`
	HTTPHeaders   []common.NameValue `yaml:"headers,omitempty"`
}

func (f *Fetch) Validate() error {
	if time.Duration(f.DirectTimeout) <= 0 {
		return fmt.Errorf("direct_timeout must be positive")
	}
	if time.Duration(f.RelayTimeout) <= 0 {
		return fmt.Errorf("relay_timeout must be positive")
	}
	if f.RelayURL != "" && !strings.HasPrefix(f.RelayURL, "https://") && !strings.HasPrefix(f.RelayURL, "http://") {
		return fmt.Errorf("relay_url must be an absolute http(s) url")
	}
	for i, header := range f.HTTPHeaders {
		if err := header.Validate(); err != nil {
			return fmt.Errorf("header[%d]: %w", i, err)
		}
	}
	return nil
}
