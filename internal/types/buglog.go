package types

import "net/textproto"

// BugLogEntry is one message of a bug's log, in log order.
type BugLogEntry struct {
	MsgNum      int                 `json:"msg_num" yaml:"msg_num"`
	Header      map[string][]string `json:"header" yaml:"header"`
	Body        string              `json:"body" yaml:"body"`
	Attachments []Attachment        `json:"attachments" yaml:"attachments"`
}

// Attachment is one raw non-body MIME part of a log message.
type Attachment struct {
	ContentType string `json:"content_type" yaml:"content_type"`
	Filename    string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Data        []byte `json:"data" yaml:"data"`
}

// HeaderValue returns the first value of the named header, matching
// names case-insensitively.
func (e BugLogEntry) HeaderValue(name string) string {
	values := e.Header[textproto.CanonicalMIMEHeaderKey(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
