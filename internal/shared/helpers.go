// Package shared provides small helpers used by the codec, the mail
// parser and the HTTP transport.
package shared

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// CharsetReader converts input in the named charset to UTF-8. It has the
// signature expected by xml.Decoder and mime.WordDecoder.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	label := strings.ToLower(strings.TrimSpace(charset))
	if label == "" || label == "utf-8" || label == "utf8" || label == "us-ascii" {
		return input, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// ToUTF8 converts data in the named charset to a UTF-8 string. Unknown
// charsets and undecodable bytes fall back to replacing invalid
// sequences.
func ToUTF8(charset string, data []byte) string {
	reader, err := CharsetReader(charset, strings.NewReader(string(data)))
	if err == nil {
		if converted, readErr := io.ReadAll(reader); readErr == nil {
			return strings.ToValidUTF8(string(converted), "�")
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}
