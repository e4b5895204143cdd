package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"debianbts/internal/ports"
	"debianbts/internal/soap"
	"debianbts/internal/types"
)

// Operation names exposed by the Debbugs SOAP interface.
const (
	OpGetBugs    = "get_bugs"
	OpGetStatus  = "get_status"
	OpGetUsertag = "get_usertag"
	OpGetBugLog  = "get_bug_log"
	OpNewestBugs = "newest_bugs"
)

// Caller performs one request/reply round trip: encode, send through the
// injected transport, decode. It keeps no state between calls.
type Caller struct {
	Transport ports.TransportPort
	Namespace string
}

func NewCaller(transport ports.TransportPort, namespace string) Caller {
	if namespace == "" {
		namespace = types.DefaultNamespace
	}
	return Caller{Transport: transport, Namespace: namespace}
}

func (c Caller) Call(ctx context.Context, operation string, args ...any) (soap.Reply, error) {
	assert.NotEmpty(ctx, operation, "operation must be set")
	req := soap.Request{Namespace: c.Namespace, Operation: operation, Args: args}
	body, err := soap.EncodeRequest(req)
	if err != nil {
		return soap.Reply{}, err
	}
	raw, err := c.Transport.Send(ctx, req.Action(), body)
	if err != nil {
		if types.KindOf(err) != "" {
			return soap.Reply{}, err
		}
		return soap.Reply{}, types.TransportError(fmt.Sprintf("%s request failed", operation), err)
	}
	log.Ctx(ctx).Debug().
		Str("operation", operation).
		Int("request_bytes", len(body)).
		Int("reply_bytes", len(raw)).
		Msg("soap round trip")
	return soap.DecodeReply(operation, raw)
}
