package xtream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Xtream panels are wildly inconsistent about JSON scalar types: ids and
// flags arrive as numbers on some servers and as strings on others. These
// wrappers absorb both.

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return string(f)
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch s {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

type accountResponse struct {
	UserInfo userInfo `json:"user_info"`
}

type userInfo struct {
	Username       string     `json:"username"`
	Auth           flexBool   `json:"auth"`
	Status         string     `json:"status"`
	ExpDate        flexString `json:"exp_date"`
	MaxConnections flexString `json:"max_connections"`
}

// AccountInfo is the validated login probe result.
type AccountInfo struct {
	Username       string `json:"username"`
	Status         string `json:"status"`
	ExpDate        string `json:"expDate,omitempty"`
	MaxConnections string `json:"maxConnections,omitempty"`
}

type category struct {
	CategoryID   flexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
}

type liveStream struct {
	StreamID     flexString `json:"stream_id"`
	Name         string     `json:"name"`
	StreamIcon   string     `json:"stream_icon"`
	CategoryID   flexString `json:"category_id"`
	EPGChannelID flexString `json:"epg_channel_id"`
}

type shortEPGResponse struct {
	EPGListings []shortEPGEntry `json:"epg_listings"`
}

type shortEPGEntry struct {
	Title          flexString `json:"title"`
	Description    flexString `json:"description"`
	Start          string     `json:"start"`
	End            string     `json:"end"`
	StartTimestamp flexString `json:"start_timestamp"`
	StopTimestamp  flexString `json:"stop_timestamp"`
}

func (e shortEPGEntry) startUnix() (int64, bool) {
	return parseUnix(string(e.StartTimestamp))
}

func (e shortEPGEntry) stopUnix() (int64, bool) {
	return parseUnix(string(e.StopTimestamp))
}

func parseUnix(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
