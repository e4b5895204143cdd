package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debianbts/internal/shared"
	"debianbts/internal/types"
)

// Request is one remote operation with its positional arguments.
type Request struct {
	Namespace string
	Operation string
	Args      []any
}

// Reply holds the children of the operation's response element.
type Reply struct {
	Operation string
	Values    []Value
}

// Result returns the first value of the reply, which is where Debbugs
// puts the return value of every operation.
func (r Reply) Result() *Value {
	if len(r.Values) == 0 {
		return nil
	}
	return &r.Values[0]
}

// Action is the SOAPAction header value for the request.
func (r Request) Action() string {
	return `"` + r.Namespace + "#" + r.Operation + `"`
}

// EncodeRequest serialises r into a SOAP 1.1 envelope. Arguments are
// named arg0..argN in order.
func EncodeRequest(r Request) ([]byte, error) {
	if strings.TrimSpace(r.Operation) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("operation is empty")
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)

	envelope := xml.StartElement{
		Name: xml.Name{Local: "soap:Envelope"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:soap"}, Value: NamespaceEnvelope},
			{Name: xml.Name{Local: "xmlns:soapenc"}, Value: NamespaceEncoding},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: NamespaceXSI},
			{Name: xml.Name{Local: "xmlns:xsd"}, Value: NamespaceXSD},
			{Name: xml.Name{Local: "soap:encodingStyle"}, Value: NamespaceEncoding},
		},
	}
	body := xml.StartElement{Name: xml.Name{Local: "soap:Body"}}
	method := xml.StartElement{
		Name: xml.Name{Local: "ns1:" + r.Operation},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns:ns1"}, Value: r.Namespace}},
	}
	for _, token := range []xml.Token{envelope, body, method} {
		if err := enc.EncodeToken(token); err != nil {
			return nil, encodeFailure(r.Operation, err)
		}
	}
	for i, arg := range r.Args {
		if err := encodeValue(enc, fmt.Sprintf("arg%d", i), arg); err != nil {
			return nil, encodeFailure(r.Operation, err)
		}
	}
	for _, token := range []xml.Token{method.End(), body.End(), envelope.End()} {
		if err := enc.EncodeToken(token); err != nil {
			return nil, encodeFailure(r.Operation, err)
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, encodeFailure(r.Operation, err)
	}
	return buf.Bytes(), nil
}

func encodeFailure(operation string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("failed to encode %s request", operation)).
		WithCause(err)
}

// DecodeReply parses a SOAP envelope and returns the children of the
// <operation>Response element. A Fault body becomes a remote fault error;
// anything that is not a well-formed envelope with that wrapper is a
// malformed reply.
func DecodeReply(operation string, data []byte) (Reply, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = shared.CharsetReader
	var root node
	if err := dec.Decode(&root); err != nil {
		return Reply{}, types.MalformedReplyError("reply is not well-formed xml", err)
	}
	if err := checkTrailing(dec); err != nil {
		return Reply{}, err
	}
	if root.XMLName.Local != "Envelope" {
		return Reply{}, types.MalformedReplyError(
			fmt.Sprintf("unexpected root element %q", root.XMLName.Local), nil)
	}
	body := findChild(root.Children, "Body")
	if body == nil {
		return Reply{}, types.MalformedReplyError("reply has no soap body", nil)
	}
	if fault := findChild(body.Children, "Fault"); fault != nil {
		return Reply{}, decodeFault(*fault)
	}
	wrapper := operation + "Response"
	response := findChild(body.Children, wrapper)
	if response == nil {
		return Reply{}, types.MalformedReplyError(
			fmt.Sprintf("reply has no %s element", wrapper), nil)
	}
	reply := Reply{Operation: operation, Values: make([]Value, 0, len(response.Children))}
	for _, child := range response.Children {
		reply.Values = append(reply.Values, child.toValue())
	}
	return reply, nil
}

// checkTrailing reads the rest of the document. Only whitespace,
// comments and processing instructions may follow the root element.
func checkTrailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return types.MalformedReplyError("reply is not well-formed xml", err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return types.MalformedReplyError("unexpected text after the envelope", nil)
			}
		default:
			return types.MalformedReplyError("unexpected content after the envelope", nil)
		}
	}
}

func decodeFault(fault node) error {
	var code, message string
	if n := findChild(fault.Children, "faultcode"); n != nil {
		code = strings.TrimSpace(n.Text)
	}
	if n := findChild(fault.Children, "faultstring"); n != nil {
		message = strings.TrimSpace(n.Text)
	}
	return types.RemoteFaultError(code, message)
}

func findChild(children []node, local string) *node {
	for i := range children {
		if children[i].XMLName.Local == local {
			return &children[i]
		}
	}
	return nil
}
