package filesystem

import (
	"fmt"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DefaultMaxTextBytes caps how much file content Load will materialize at
// once. Go has no catchable allocation failure, so the out-of-memory
// condition is a pre-check against this ceiling rather than a recovered
// fault.
const DefaultMaxTextBytes = 64 << 20

// DetectCharsetName runs a heuristic detector over data and returns the
// inferred charset identifier, lowercased. An inconclusive detection
// returns fallback.
func DetectCharsetName(data []byte, fallback string) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return fallback
	}
	return strings.ToLower(result.Charset)
}

// Decode converts raw file bytes to a string under params. A detection that
// is inconclusive, or that names a charset no decoder exists for, falls
// back to params.Charset; decoding failures surface as IOFailure on path.
func Decode(path string, data []byte, params TextParams) (string, error) {
	label := params.Charset
	if params.DetectCharset {
		label = DetectCharsetName(data, params.Charset)
	}
	enc, _ := charset.Lookup(label)
	if enc == nil && params.DetectCharset && label != params.Charset {
		label = params.Charset
		enc, _ = charset.Lookup(label)
	}
	if enc == nil {
		return "", IOFailure(path, fmt.Errorf("unknown charset %q", label))
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", IOFailure(path, err)
	}
	return string(decoded), nil
}

// Encode rewrites every line terminator in text to params.LineEnding, then
// encodes with params.Charset. Normalization is idempotent: encoding
// already-normalized text is a byte-identical no-op.
func Encode(path, text string, params TextParams) ([]byte, error) {
	normalized := NormalizeLineEndings(text, params.LineEnding)
	enc, _ := charset.Lookup(params.Charset)
	if enc == nil {
		return nil, IOFailure(path, fmt.Errorf("unknown charset %q", params.Charset))
	}
	encoded, _, err := transform.Bytes(enc.NewEncoder(), []byte(normalized))
	if err != nil {
		return nil, IOFailure(path, err)
	}
	return encoded, nil
}

// NormalizeLineEndings rewrites every terminator (LF, CRLF or lone CR) in s
// to the single style le. Empty le defaults to LF.
func NormalizeLineEndings(s string, le LineEnding) string {
	if le == "" {
		le = LF
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if le == LF {
		return s
	}
	return strings.ReplaceAll(s, "\n", string(le))
}
