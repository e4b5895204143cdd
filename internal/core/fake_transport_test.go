package core

import (
	"context"
	"encoding/xml"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type sentRequest struct {
	Action string
	Body   string
}

// fakeTransport answers every request with reply(body). It is safe for
// concurrent use.
type fakeTransport struct {
	mu    sync.Mutex
	sent  []sentRequest
	reply func(body string) ([]byte, error)
}

func (f *fakeTransport) Send(_ context.Context, action string, body []byte) ([]byte, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sentRequest{Action: action, Body: string(body)})
	f.mu.Unlock()
	return f.reply(string(body))
}

func (f *fakeTransport) calls() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentRequest(nil), f.sent...)
}

func staticReply(data string) func(string) ([]byte, error) {
	return func(string) ([]byte, error) { return []byte(data), nil }
}

func soapReply(operation string, result string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xmlns:xsd="http://www.w3.org/2001/XMLSchema"` +
		` xmlns:apachens="http://xml.apache.org/xml-soap">` +
		`<soap:Body><` + operation + `Response xmlns="Debbugs/SOAP/V1">` + result +
		`</` + operation + `Response></soap:Body></soap:Envelope>`
}

func intArray(ids ...string) string {
	var sb strings.Builder
	sb.WriteString(`<soapenc:Array xsi:type="soapenc:Array">`)
	for _, id := range ids {
		sb.WriteString(`<item xsi:type="xsd:int">` + id + `</item>`)
	}
	sb.WriteString(`</soapenc:Array>`)
	return sb.String()
}

// statusStruct renders a minimal valid get_status bug struct.
func statusStruct(bugNum string, extra string) string {
	return `<bug_num xsi:type="xsd:int">` + bugNum + `</bug_num>` +
		`<date xsi:type="xsd:int">1432372126</date>` +
		`<log_modified xsi:type="xsd:int">1432400000</log_modified>` + extra
}

func statusMap(structs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<s-gensym3 xsi:type="apachens:Map">`)
	for _, s := range structs {
		sb.WriteString(`<item><key xsi:type="xsd:int">0</key><value>` + s + `</value></item>`)
	}
	sb.WriteString(`</s-gensym3>`)
	return sb.String()
}

type requestArg struct {
	XMLName xml.Name
	Type    string   `xml:"type,attr"`
	Text    string   `xml:",chardata"`
	Items   []string `xml:"item"`
}

// decodeArgs extracts the argN elements of an encoded request.
func decodeArgs(t *testing.T, body string) []requestArg {
	t.Helper()
	var env struct {
		Body struct {
			Method struct {
				Args []requestArg `xml:",any"`
			} `xml:",any"`
		} `xml:"Body"`
	}
	require.NoError(t, xml.Unmarshal([]byte(body), &env))
	return env.Body.Method.Args
}
