package core

import (
	"bytes"
	"mime"
	"net/mail"
	"net/textproto"
	"strings"

	"debianbts/internal/shared"
	"debianbts/internal/soap"
	"debianbts/internal/types"
)

// Debbugs record marker lines. Each record runs from its marker to the
// recordEnd line.
const (
	recordAutocheck  = "\x01"
	recordRecips     = "\x02"
	recordEnd        = "\x03"
	recordIncoming   = "\x05"
	recordHTML       = "\x06"
	recordIncomingV2 = "\x07"
)

type logState int

const (
	stateMessage    logState = iota
	stateRecipients          // the next line lists delivery addresses
	stateHTML                // not mail; skipped through recordEnd
)

var headerWordDecoder = &mime.WordDecoder{CharsetReader: shared.CharsetReader}

// ParseBugLog decodes a raw log field (plain or base64) and parses every
// message in it.
func ParseBugLog(payload *soap.Value) ([]types.BugLogEntry, error) {
	raw, err := soap.DecodeBytes(payload)
	if err != nil {
		return nil, err
	}
	return ParseBugLogBytes(raw), nil
}

// ParseBugLogBytes splits a raw log into message blocks in log order and
// parses each one. A block that is not a valid message still yields an
// entry holding the raw block as its body.
func ParseBugLogBytes(data []byte) []types.BugLogEntry {
	entries := []types.BugLogEntry{}
	for _, block := range splitLogRecords(data) {
		entry := ParseMessage(block)
		entry.MsgNum = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries
}

func splitLogRecords(data []byte) [][]byte {
	var records [][]byte
	var current [][]byte
	flush := func() {
		block := bytes.Join(current, []byte("\n"))
		if len(bytes.TrimSpace(block)) > 0 {
			records = append(records, block)
		}
		current = nil
	}
	state := stateMessage
	for _, line := range bytes.Split(data, []byte("\n")) {
		marker := string(bytes.TrimRight(line, "\r"))
		if marker == recordEnd {
			if state == stateHTML {
				current = nil
			} else {
				flush()
			}
			state = stateMessage
			continue
		}
		switch state {
		case stateHTML:
			continue
		case stateRecipients:
			state = stateMessage
			continue
		}
		switch marker {
		case recordAutocheck:
			state = stateRecipients
			continue
		case recordHTML:
			current = nil
			state = stateHTML
			continue
		case recordRecips, recordIncoming, recordIncomingV2:
			continue
		}
		current = append(current, line)
	}
	if state != stateHTML {
		flush()
	}
	return records
}

// ParseMessage parses one RFC 822 message. Lines doubled-dot stuffed by
// SMTP are restored before parsing, and the body is decoded according to
// the message's own Content-Transfer-Encoding and charset.
func ParseMessage(block []byte) types.BugLogEntry {
	unstuffed := unstuffDots(block)
	msg, err := mail.ReadMessage(bytes.NewReader(unstuffed))
	if err != nil {
		return rawEntry(block)
	}
	body, attachments := decodeMessageBody(textproto.MIMEHeader(msg.Header), msg.Body)
	return types.BugLogEntry{
		Header:      decodeHeader(msg.Header),
		Body:        body,
		Attachments: attachments,
	}
}

func rawEntry(block []byte) types.BugLogEntry {
	return types.BugLogEntry{
		Header:      map[string][]string{},
		Body:        strings.ToValidUTF8(string(block), "�"),
		Attachments: []types.Attachment{},
	}
}

// unstuffDots removes the extra leading dot SMTP transparency adds to
// lines that begin with a dot, and drops an mbox "From " envelope line.
func unstuffDots(block []byte) []byte {
	lines := bytes.Split(block, []byte("\n"))
	if len(lines) > 0 && bytes.HasPrefix(lines[0], []byte("From ")) {
		lines = lines[1:]
	}
	for i, line := range lines {
		if bytes.HasPrefix(line, []byte("..")) {
			lines[i] = line[1:]
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func decodeHeader(header mail.Header) map[string][]string {
	decoded := make(map[string][]string, len(header))
	for key, values := range header {
		out := make([]string, 0, len(values))
		for _, value := range values {
			if text, err := headerWordDecoder.DecodeHeader(value); err == nil {
				out = append(out, text)
				continue
			}
			out = append(out, value)
		}
		decoded[key] = out
	}
	return decoded
}
