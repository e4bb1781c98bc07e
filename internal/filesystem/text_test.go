package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLineEndings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		le   LineEnding
		want string
	}{
		{"lf passthrough", "a\nb\n", LF, "a\nb\n"},
		{"crlf to lf", "a\r\nb\r\n", LF, "a\nb\n"},
		{"lone cr to lf", "a\rb\r", LF, "a\nb\n"},
		{"mixed to lf", "a\r\nb\rc\n", LF, "a\nb\nc\n"},
		{"mixed to crlf", "a\r\nb\rc\n", CRLF, "a\r\nb\r\nc\r\n"},
		{"mixed to cr", "a\r\nb\rc\n", CR, "a\rb\rc\r"},
		{"empty default", "", "", ""},
		{"no terminators", "abc", CRLF, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeLineEndings(tc.in, tc.le))
		})
	}
}

func TestNormalizeLineEndingsIdempotent(t *testing.T) {
	for _, le := range []LineEnding{LF, CRLF, CR} {
		once := NormalizeLineEndings("a\r\nb\rc\nd", le)
		assert.Equal(t, once, NormalizeLineEndings(once, le))
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	params := TextParams{Charset: "utf-8", LineEnding: LF}
	original := "héllo wörld\nsecond line\n"

	data, err := Encode("/f.txt", original, params)
	require.NoError(t, err)

	text, err := Decode("/f.txt", data, params)
	require.NoError(t, err)
	assert.Equal(t, original, text)
}

func TestEncodeAppliesLineEnding(t *testing.T) {
	data, err := Encode("/f.txt", "a\nb\n", TextParams{Charset: "utf-8", LineEnding: CRLF})
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", string(data))
}

func TestDecodeLatin1(t *testing.T) {
	// 0xE9 is é in ISO 8859-1.
	text, err := Decode("/f.txt", []byte{'c', 'a', 'f', 0xE9}, TextParams{Charset: "iso-8859-1"})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestDecodeFallsBackOnUndecodableDetection(t *testing.T) {
	// A UTF-32BE BOM is detected conclusively, but no decoder exists for
	// that label; the configured charset must take over instead of failing.
	data := []byte{0x00, 0x00, 0xFE, 0xFF}
	for _, r := range "hello" {
		data = append(data, 0x00, 0x00, 0x00, byte(r))
	}
	require.Equal(t, "utf-32be", DetectCharsetName(data, "utf-8"))

	_, err := Decode("/f.txt", data, TextParams{Charset: "utf-8", DetectCharset: true})
	require.NoError(t, err)
}

func TestDecodeUnknownCharset(t *testing.T) {
	_, err := Decode("/f.txt", []byte("abc"), TextParams{Charset: "no-such-charset"})
	assert.Equal(t, CodeIOFailure, CodeOf(err))
	assert.Equal(t, "/f.txt", PathOf(err))
}

func TestDetectCharsetNameFallback(t *testing.T) {
	// Nothing to detect in empty input, the fallback must win.
	assert.Equal(t, "utf-8", DetectCharsetName(nil, "utf-8"))
}

func TestDetectCharsetNameLowercases(t *testing.T) {
	name := DetectCharsetName([]byte("plain ascii text, enough to be detected\n"), "utf-8")
	for _, r := range name {
		assert.False(t, r >= 'A' && r <= 'Z', "detected charset %q must be lowercased", name)
	}
}
