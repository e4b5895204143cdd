package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"debianbts/internal/soap"
	"debianbts/internal/types"
)

// decodeIDList reads a soapenc:Array of bug numbers. Unlike list fields
// inside a bug record, a bad id fails the call: the list is the result.
func decodeIDList(reply soap.Reply) ([]int, error) {
	ids := []int{}
	result := reply.Result()
	if result == nil {
		return ids, nil
	}
	for i := range result.Children {
		id, err := soap.DecodeInt(&result.Children[i])
		if err != nil {
			return nil, types.MalformedReplyError(fmt.Sprintf("%s returned a non-numeric bug id", reply.Operation), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeUsertags reads either an apachens:Map of item{key, value} or an
// untyped element whose child names are the tags.
func decodeUsertags(reply soap.Reply) (map[string][]int, error) {
	mapping := map[string][]int{}
	result := reply.Result()
	if result == nil {
		return mapping, nil
	}
	for i := range result.Children {
		entry := &result.Children[i]
		tag := entry.Name
		bugs := entry
		if result.IsMap() {
			key := entry.Child("key")
			if key == nil {
				return nil, types.MalformedReplyError("usertag item has no key", nil)
			}
			text, err := soap.DecodeOptionalBase64String(key, true)
			if err != nil {
				return nil, types.MalformedReplyError("usertag key does not decode", err)
			}
			tag = text
			bugs = entry.Child("value")
		}
		ids, err := decodeIntChildren(bugs)
		if err != nil {
			return nil, types.MalformedReplyError(fmt.Sprintf("usertag %s has a non-numeric bug id", tag), err)
		}
		mapping[tag] = ids
	}
	return mapping, nil
}

func decodeIntChildren(v *soap.Value) ([]int, error) {
	ids := []int{}
	if v == nil {
		return ids, nil
	}
	if !v.HasChildren() {
		if strings.TrimSpace(v.Text) == "" {
			return ids, nil
		}
		id, err := soap.DecodeInt(v)
		if err != nil {
			return nil, err
		}
		return append(ids, id), nil
	}
	for i := range v.Children {
		id, err := soap.DecodeInt(&v.Children[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeBugLogReply turns the get_bug_log array of
// item{header, body, msg_num, attachments} into log entries. Each item is
// parsed as one message made of its header, a blank line and its body.
// A reply holding the raw log text instead is split by ParseBugLog.
func decodeBugLogReply(ctx context.Context, reply soap.Reply) ([]types.BugLogEntry, error) {
	entries := []types.BugLogEntry{}
	result := reply.Result()
	if result == nil {
		return entries, nil
	}
	if !result.HasChildren() {
		// whole raw log in one field
		return ParseBugLog(result)
	}
	for i := range result.Children {
		item := &result.Children[i]
		header, err := soap.DecodeOptionalBase64String(item.Child("header"), true)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("item", i).Msg("bug log header decode failed")
		}
		body, err := soap.DecodeOptionalBase64String(item.Child("body"), true)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("item", i).Msg("bug log body decode failed")
		}

		message := strings.TrimRight(header, "\r\n") + "\n\n" + body
		entry := ParseMessage([]byte(message))
		entry.MsgNum = i + 1
		if numNode := item.Child("msg_num"); numNode != nil {
			if num, err := soap.DecodeInt(numNode); err == nil {
				entry.MsgNum = num
			} else {
				log.Ctx(ctx).Warn().Err(err).Int("item", i).Msg("bug log msg_num decode failed")
			}
		}
		entry.Attachments = append(entry.Attachments, decodeAttachments(ctx, item.Child("attachments"))...)
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeAttachments(ctx context.Context, v *soap.Value) []types.Attachment {
	var attachments []types.Attachment
	if v == nil {
		return attachments
	}
	for i := range v.Children {
		data, err := soap.DecodeBytes(&v.Children[i])
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("bug log attachment decode failed")
			continue
		}
		attachments = append(attachments, types.Attachment{
			ContentType: "application/octet-stream",
			Data:        data,
		})
	}
	return attachments
}
