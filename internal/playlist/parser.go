package playlist

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

const extinfPrefix = "#EXTINF:"

// attrRE extracts key="value" attributes from EXTINF metadata lines.
var attrRE = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

// Parse scans M3U text into channels. It is total over any input: malformed
// lines never produce an error, only fewer channels. A metadata line with no
// following URL is dropped, a URL with no preceding metadata is ignored.
func Parse(r io.Reader) []Channel {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)

	var channels []Channel
	var pending *Channel

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, extinfPrefix) {
			ch := parseExtinf(strings.TrimPrefix(line, extinfPrefix))
			pending = &ch
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			if pending != nil {
				pending.URL = line
				channels = append(channels, *pending)
				pending = nil
			}
		}
	}

	// Scanner errors are unreachable for in-memory input and irrelevant
	// for the partial result contract, so they are deliberately dropped.
	return channels
}

// ParseString is a convenience wrapper over Parse.
func ParseString(text string) []Channel {
	return Parse(strings.NewReader(text))
}

func parseExtinf(info string) Channel {
	ch := Channel{
		Name:  DefaultName,
		Group: DefaultGroup,
	}

	if idx := strings.LastIndex(info, ","); idx >= 0 {
		if name := strings.TrimSpace(info[idx+1:]); name != "" {
			ch.Name = name
		}
	}

	for _, match := range attrRE.FindAllStringSubmatch(info, -1) {
		key, value := match[1], match[2]
		switch key {
		case "tvg-logo":
			ch.Logo = value
		case "group-title":
			if value != "" {
				ch.Group = value
			}
		case "tvg-id":
			ch.EPGID = value
		}
	}

	return ch
}
