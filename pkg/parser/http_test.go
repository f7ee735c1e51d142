package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatusLine(t *testing.T) {
	cases := []struct {
		in   string
		want StatusLine
	}{
		{
			"HTTP/1.1 200 OK\r\nServer: nginx\r\n",
			StatusLine{Proto: "HTTP/1.1", Code: 200, Reason: "OK", Raw: "HTTP/1.1 200 OK"},
		},
		{
			"HTTP/1.0 404 Not Found\n",
			StatusLine{Proto: "HTTP/1.0", Code: 404, Reason: "Not Found", Raw: "HTTP/1.0 404 Not Found"},
		},
		{
			"HTTP/1.1 204",
			StatusLine{Proto: "HTTP/1.1", Code: 204, Raw: "HTTP/1.1 204"},
		},
		{
			"HTTP/1.1 503 ",
			StatusLine{Proto: "HTTP/1.1", Code: 503, Raw: "HTTP/1.1 503 "},
		},
	}

	for _, c := range cases {
		got, err := ParseStatusLine(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got)
	}
}

func TestParseStatusLineMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"SSH-2.0-OpenSSH_9.3\r\n",
		"HTTP/1.1\r\n",
		"HTTP/1.1 OK\r\n",
		"HTTP/1.1 20 OK\r\n",
		"HTTP/1.1 099 Eh\r\n",
	} {
		sl, err := ParseStatusLine(in)
		require.ErrorIs(t, err, ErrMalformedStatusLine, in)
		require.Equal(t, FirstLine(in), sl.Raw, "raw line is kept for display")
	}
}

func TestFirstLine(t *testing.T) {
	require.Equal(t, "HTTP/1.1 200 OK", FirstLine("HTTP/1.1 200 OK\r\nX: y"))
	require.Equal(t, "truncated", FirstLine("truncated"))
	require.Equal(t, "", FirstLine("\r\n"))
}
