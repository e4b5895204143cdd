package core

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"unicode"

	"debianbts/internal/shared"
	"debianbts/internal/types"
)

// decodeMessageBody returns the message text and any non-text parts.
// Multipart messages contribute their first inline text/plain part as the
// body; every other leaf part becomes an attachment.
func decodeMessageBody(header textproto.MIMEHeader, body io.Reader) (string, []types.Attachment) {
	data, err := io.ReadAll(body)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�"), []types.Attachment{}
	}
	mediaType, params := contentType(header)
	if strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" {
		walker := &partWalker{attachments: []types.Attachment{}}
		if err := walker.walk(bytes.NewReader(data), params["boundary"]); err == nil {
			return walker.body, walker.attachments
		}
		return strings.ToValidUTF8(string(data), "�"), []types.Attachment{}
	}
	decoded := decodeTransfer(header.Get("Content-Transfer-Encoding"), data)
	return shared.ToUTF8(params["charset"], decoded), []types.Attachment{}
}

type partWalker struct {
	body        string
	found       bool
	attachments []types.Attachment
}

func (w *partWalker) walk(r io.Reader, boundary string) error {
	reader := multipart.NewReader(r, boundary)
	for {
		part, err := reader.NextRawPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return err
		}
		mediaType, params := contentType(part.Header)
		if strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" {
			if err := w.walk(bytes.NewReader(data), params["boundary"]); err != nil {
				return err
			}
			continue
		}
		decoded := decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), data)
		if !w.found && mediaType == "text/plain" && !isAttachment(part.Header) {
			w.body = shared.ToUTF8(params["charset"], decoded)
			w.found = true
			continue
		}
		w.attachments = append(w.attachments, types.Attachment{
			ContentType: mediaType,
			Filename:    part.FileName(),
			Data:        decoded,
		})
	}
}

func contentType(header textproto.MIMEHeader) (string, map[string]string) {
	value := header.Get("Content-Type")
	if value == "" {
		return "text/plain", map[string]string{}
	}
	mediaType, params, err := mime.ParseMediaType(value)
	if err != nil {
		return "text/plain", map[string]string{}
	}
	return strings.ToLower(mediaType), params
}

func isAttachment(header textproto.MIMEHeader) bool {
	disposition, _, err := mime.ParseMediaType(header.Get("Content-Disposition"))
	return err == nil && strings.EqualFold(disposition, "attachment")
}

// decodeTransfer applies the declared Content-Transfer-Encoding. Data
// that does not decode is returned unchanged.
func decodeTransfer(encoding string, data []byte) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(data)))
		if err != nil {
			return data
		}
		return decoded
	case "base64":
		compact := bytes.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, data)
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
		n, err := base64.StdEncoding.Decode(decoded, compact)
		if err != nil {
			return data
		}
		return decoded[:n]
	default:
		return data
	}
}
