package config

import (
	"time"

	"zapp/internal/config/common"
)

const defaultRelayURL = "https://api.allorigins.win/raw?url="

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Logs: Logs{
			Level:  "info",
			Format: "text",
		},
		EPG: EPG{
			StaleAfter:     common.Duration(8 * time.Hour),
			CheckInterval:  common.Duration(time.Hour),
			ShortEPGFanout: 10,
		},
		Fetch: Fetch{
			DirectTimeout: common.Duration(60 * time.Second),
			RelayTimeout:  common.Duration(120 * time.Second),
			RelayURL:      defaultRelayURL,
		},
		State: State{
			Path: "state.json",
		},
	}
}
