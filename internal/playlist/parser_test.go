package playlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Channel
	}{
		{
			name: "full attributes",
			input: `#EXTM3U
#EXTINF:-1 tvg-id="cnn.us" tvg-logo="http://logo/cnn.png" group-title="News",CNN
http://stream/cnn
`,
			expected: []Channel{
				{
					Name:  "CNN",
					Logo:  "http://logo/cnn.png",
					Group: "News",
					URL:   "http://stream/cnn",
					EPGID: "cnn.us",
				},
			},
		},
		{
			name: "missing name and group fall back to defaults",
			input: `#EXTM3U
#EXTINF:-1,
http://stream/mystery
`,
			expected: []Channel{
				{
					Name:  DefaultName,
					Group: DefaultGroup,
					URL:   "http://stream/mystery",
				},
			},
		},
		{
			name: "unrelated directives between extinf and url are skipped",
			input: `#EXTM3U
#EXTINF:-1 group-title="Sports",ESPN
#EXTVLCOPT:http-user-agent=Player
http://stream/espn
`,
			expected: []Channel{
				{Name: "ESPN", Group: "Sports", URL: "http://stream/espn"},
			},
		},
		{
			name: "dangling extinf without url is dropped",
			input: `#EXTM3U
#EXTINF:-1,Orphan
#EXTINF:-1,Kept
https://stream/kept
#EXTINF:-1,Trailing
`,
			expected: []Channel{
				{Name: "Kept", Group: DefaultGroup, URL: "https://stream/kept"},
			},
		},
		{
			name: "url without extinf is ignored",
			input: `#EXTM3U
http://stream/ignored
#EXTINF:-1,Real
http://stream/real
`,
			expected: []Channel{
				{Name: "Real", Group: DefaultGroup, URL: "http://stream/real"},
			},
		},
		{
			name: "comma inside attribute does not split the name",
			input: `#EXTM3U
#EXTINF:-1 group-title="News, World",BBC World
http://stream/bbc
`,
			expected: []Channel{
				{Name: "BBC World", Group: "News, World", URL: "http://stream/bbc"},
			},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels := Parse(strings.NewReader(tt.input))
			require.Len(t, channels, len(tt.expected))
			assert.Equal(t, tt.expected, channels)
		})
	}
}

func TestParse_TotalOverLargeInput(t *testing.T) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for i := 0; i < 500; i++ {
		b.WriteString("#EXTINF:-1,Channel\n")
		b.WriteString("http://stream/ch\n")
	}
	b.WriteString("#EXTINF:-1,Dangling\n")

	channels := ParseString(b.String())
	assert.Len(t, channels, 500)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	input := "#EXTM3U\r\n#EXTINF:-1,CRLF Channel\r\nhttp://stream/crlf\r\n"

	channels := ParseString(input)
	require.Len(t, channels, 1)
	assert.Equal(t, "CRLF Channel", channels[0].Name)
	assert.Equal(t, "http://stream/crlf", channels[0].URL)
}
