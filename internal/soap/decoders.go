package soap

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"debianbts/internal/types"
)

// ListSplit selects the compatibility shim for list fields that older
// servers returned as one joined string instead of child elements.
type ListSplit int

const (
	SplitNone ListSplit = iota
	SplitWhitespace
	SplitComma
)

func (s ListSplit) split(text string) []string {
	var parts []string
	switch s {
	case SplitWhitespace:
		parts = strings.Fields(text)
	case SplitComma:
		for _, part := range strings.Split(text, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	default:
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = []string{trimmed}
		}
	}
	return parts
}

// DecodeString returns the node text, or "" for an absent node.
func DecodeString(v *Value) string {
	if v == nil {
		return ""
	}
	return v.Text
}

// DecodeOptionalBase64String returns the node text, base64-decoded when
// the field is eligible and the node is typed base64Binary. Invalid
// base64 is a decode error with an empty result.
func DecodeOptionalBase64String(v *Value, eligible bool) (string, error) {
	if v == nil {
		return "", nil
	}
	if !eligible || !v.IsBase64() {
		return v.Text, nil
	}
	raw, err := decodeBase64(v.Text)
	if err != nil {
		return "", types.DecodeError(v.Name, "invalid base64 text", err)
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}

// DecodeBytes returns the raw payload of a node, decoding base64 when the
// node is typed base64Binary.
func DecodeBytes(v *Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if !v.IsBase64() {
		return []byte(v.Text), nil
	}
	raw, err := decodeBase64(v.Text)
	if err != nil {
		return nil, types.DecodeError(v.Name, "invalid base64 payload", err)
	}
	return raw, nil
}

// DecodeInt parses the node text as a decimal integer.
func DecodeInt(v *Value) (int, error) {
	if v == nil {
		return 0, types.DecodeError("int", "value is absent", nil)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.Text))
	if err != nil {
		return 0, types.DecodeError(v.Name, fmt.Sprintf("not an integer: %q", v.Text), err)
	}
	return n, nil
}

// DecodeIntList parses every child as an integer. Bad entries are
// reported and skipped; the rest of the list is still returned.
func DecodeIntList(v *Value, split ListSplit) ([]int, []error) {
	result := []int{}
	var errs []error
	for _, text := range listTexts(v, split) {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			errs = append(errs, types.DecodeError(v.Name, fmt.Sprintf("not an integer: %q", text), err))
			continue
		}
		result = append(result, n)
	}
	return result, errs
}

// DecodeStringList returns every child's text in document order. Items
// typed base64Binary are decoded; bad items are reported and skipped.
func DecodeStringList(v *Value, split ListSplit) ([]string, []error) {
	result := []string{}
	if v == nil {
		return result, nil
	}
	if !v.HasChildren() {
		return append(result, split.split(v.Text)...), nil
	}
	var errs []error
	for i := range v.Children {
		text, err := DecodeOptionalBase64String(&v.Children[i], true)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result = append(result, text)
	}
	return result, errs
}

func listTexts(v *Value, split ListSplit) []string {
	if v == nil {
		return nil
	}
	if !v.HasChildren() {
		return split.split(v.Text)
	}
	texts := make([]string, 0, len(v.Children))
	for _, child := range v.Children {
		texts = append(texts, child.Text)
	}
	return texts
}

// DecodeBool accepts 1/true and 0/false. An absent or empty node is
// false. Any other token is a decode error and false.
func DecodeBool(v *Value) (bool, error) {
	if v == nil {
		return false, nil
	}
	value, ok := boolToken(v.Text)
	if !ok {
		return false, types.DecodeError(v.Name, fmt.Sprintf("not a boolean: %q", v.Text), nil)
	}
	return value, nil
}

func boolToken(text string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true":
		return true, true
	case "", "0", "false":
		return false, true
	default:
		return false, false
	}
}

// DecodeTimestamp parses a Unix epoch (integer or fractional seconds) as a
// UTC time. The service always sends timestamps, so an absent or
// unparseable node is a malformed reply.
func DecodeTimestamp(v *Value) (time.Time, error) {
	if v == nil {
		return time.Time{}, types.MalformedReplyError("timestamp is absent", nil)
	}
	text := strings.TrimSpace(v.Text)
	if seconds, err := strconv.ParseInt(text, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return time.Time{}, types.MalformedReplyError(
			fmt.Sprintf("%s is not an epoch timestamp: %q", v.Name, v.Text), err)
	}
	seconds, frac := math.Modf(value)
	return time.Unix(int64(seconds), int64(math.Round(frac*1e9))).UTC(), nil
}

// DecodeDoneBy never fails. The service base64-encodes done_by only when
// it holds non-ASCII text, sometimes without a type attribute, so an
// untyped value is decoded only if the result is printable UTF-8 with at
// least one non-ASCII rune. "None" means nobody closed the bug.
func DecodeDoneBy(v *Value) string {
	if v == nil {
		return ""
	}
	text := strings.TrimSpace(v.Text)
	if text == "" || text == "None" {
		return ""
	}
	raw, err := decodeBase64(text)
	if err != nil {
		return text
	}
	decoded := string(raw)
	if v.IsBase64() {
		if utf8.ValidString(decoded) {
			return decoded
		}
		return text
	}
	if plausibleText(decoded) {
		return decoded
	}
	return text
}

func plausibleText(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	nonASCII := false
	for _, r := range s {
		if r > unicode.MaxASCII {
			nonASCII = true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return nonASCII
}

func decodeBase64(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return base64.StdEncoding.DecodeString(compact)
}
