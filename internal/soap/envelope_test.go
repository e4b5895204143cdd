package soap

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debianbts/internal/types"
)

const testNamespace = "Debbugs/SOAP/V1"

func envelope(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
  xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:apachens="http://xml.apache.org/xml-soap"
  soap:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<soap:Body>` + body + `</soap:Body></soap:Envelope>`)
}

func TestEncodeRequestScalarArgs(t *testing.T) {
	data, err := EncodeRequest(Request{
		Namespace: testNamespace,
		Operation: "get_bugs",
		Args:      []any{"package", "reportbug", "severity", "normal"},
	})
	require.NoError(t, err)
	text := string(data)

	checks := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"`,
		`<soap:Body><ns1:get_bugs xmlns:ns1="Debbugs/SOAP/V1">`,
		`<arg0 xsi:type="xsd:string">package</arg0>`,
		`<arg1 xsi:type="xsd:string">reportbug</arg1>`,
		`<arg3 xsi:type="xsd:string">normal</arg3>`,
		`</ns1:get_bugs></soap:Body></soap:Envelope>`,
	}
	for _, want := range checks {
		assert.Contains(t, text, want)
	}
}

func TestEncodeRequestIntArray(t *testing.T) {
	data, err := EncodeRequest(Request{
		Namespace: testNamespace,
		Operation: "get_status",
		Args:      []any{[]int{1, 2, 3}},
	})
	require.NoError(t, err)
	want := `<arg0 xsi:type="soapenc:Array" soapenc:arrayType="xsd:int[3]">` +
		`<item xsi:type="xsd:int">1</item><item xsi:type="xsd:int">2</item><item xsi:type="xsd:int">3</item></arg0>`
	assert.Contains(t, string(data), want)
}

func TestEncodeRequestEmptyArrayAndStruct(t *testing.T) {
	data, err := EncodeRequest(Request{
		Namespace: testNamespace,
		Operation: "op",
		Args: []any{
			[]int{},
			Struct{{Key: "flag", Value: true}, {Key: "count", Value: 7}},
		},
	})
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `<arg0 xsi:type="soapenc:Array" soapenc:arrayType="xsd:int[0]"></arg0>`)
	assert.Contains(t, text, `<arg1><flag xsi:type="xsd:int">1</flag><count xsi:type="xsd:int">7</count></arg1>`)
}

func TestEncodeRequestEscapesText(t *testing.T) {
	data, err := EncodeRequest(Request{
		Namespace: testNamespace,
		Operation: "get_usertag",
		Args:      []any{"a&b <c>"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `a&amp;b &lt;c&gt;`)
}

func TestEncodeRequestRejectsUnsupportedArgs(t *testing.T) {
	_, err := EncodeRequest(Request{Namespace: testNamespace, Operation: "op", Args: []any{3.5}})
	require.Error(t, err)

	_, err = EncodeRequest(Request{Namespace: testNamespace, Operation: " "})
	require.Error(t, err)
}

func TestEncodedRequestRoundTripsThroughDecoder(t *testing.T) {
	data, err := EncodeRequest(Request{
		Namespace: testNamespace,
		Operation: "get_bug_log",
		Args:      []any{123456},
	})
	require.NoError(t, err)
	// The request has no response wrapper, so decoding it as a reply
	// must be rejected as malformed rather than crash.
	_, err = DecodeReply("get_bug_log", data)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrorKindMalformedReply))
}

func TestRequestAction(t *testing.T) {
	action := Request{Namespace: testNamespace, Operation: "get_status"}.Action()
	if diff := cmp.Diff(`"Debbugs/SOAP/V1#get_status"`, action); diff != "" {
		t.Fatalf("unexpected action (-want +got):\n%s", diff)
	}
	assert.NotContains(t, action, "None")
}

func TestDecodeReplyArray(t *testing.T) {
	reply, err := DecodeReply("newest_bugs", envelope(
		`<newest_bugsResponse xmlns="Debbugs/SOAP/V1">`+
			`<soapenc:Array soapenc:arrayType="xsd:int[2]" xsi:type="soapenc:Array">`+
			`<item xsi:type="xsd:int">1001</item><item xsi:type="xsd:int">1002</item>`+
			`</soapenc:Array></newest_bugsResponse>`))
	require.NoError(t, err)
	result := reply.Result()
	require.NotNil(t, result)

	want := Value{
		Name: "Array",
		Type: TypeArray,
		Children: []Value{
			{Name: "item", Type: TypeInt, Text: "1001"},
			{Name: "item", Type: TypeInt, Text: "1002"},
		},
	}
	if diff := cmp.Diff(want, *result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	assert.True(t, result.IsArray())
}

func TestDecodeReplyMapAndBase64(t *testing.T) {
	reply, err := DecodeReply("get_status", envelope(
		`<get_statusResponse xmlns="Debbugs/SOAP/V1">`+
			`<s-gensym3 xsi:type="apachens:Map"><item>`+
			`<key xsi:type="xsd:int">42</key>`+
			`<value><subject xsi:type="xsd:base64Binary">w6TDtsO8</subject></value>`+
			`</item></s-gensym3></get_statusResponse>`))
	require.NoError(t, err)
	result := reply.Result()
	require.True(t, result.IsMap())
	value := result.Index(0).Child("value")
	require.NotNil(t, value)
	subject := value.Child("subject")
	require.True(t, subject.IsBase64())

	text, err := DecodeOptionalBase64String(subject, true)
	require.NoError(t, err)
	assert.Equal(t, "äöü", text)
}

func TestDecodeReplyKeepsLeafWhitespace(t *testing.T) {
	reply, err := DecodeReply("get_status", envelope(
		`<get_statusResponse><s-gensym3><summary xsi:type="xsd:string">  spaced  </summary></s-gensym3></get_statusResponse>`))
	require.NoError(t, err)
	assert.Equal(t, "  spaced  ", reply.Result().Child("summary").Text)
}

func TestDecodeReplyEmptyResponse(t *testing.T) {
	reply, err := DecodeReply("get_bugs", envelope(`<get_bugsResponse/>`))
	require.NoError(t, err)
	assert.Nil(t, reply.Result())
}

func TestDecodeReplyFault(t *testing.T) {
	_, err := DecodeReply("get_status", envelope(
		`<soap:Fault><faultcode>soap:Server</faultcode>`+
			`<faultstring>Application error</faultstring></soap:Fault>`))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrorKindRemoteFault))
	assert.Contains(t, err.Error(), "Application error")
}

func TestDecodeReplyMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not xml", data: []byte("<html><body>502 Bad Gateway")},
		{name: "empty", data: nil},
		{name: "wrong root", data: []byte(`<html><body/></html>`)},
		{name: "no body", data: []byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"/>`)},
		{name: "missing wrapper", data: envelope(`<get_bugsResponse/>`)},
		{name: "truncated trailer", data: append(envelope(`<get_statusResponse><s/></get_statusResponse>`), []byte("<unclosed><broken")...)},
		{name: "second document", data: append(envelope(`<get_statusResponse/>`), envelope(`<get_statusResponse/>`)...)},
		{name: "trailing text", data: append(envelope(`<get_statusResponse/>`), []byte("garbage")...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReply("get_status", tt.data)
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrorKindMalformedReply), "got %v", err)
		})
	}
}

func TestDecodeReplyAllowsTrailingMisc(t *testing.T) {
	data := append(envelope(`<get_statusResponse><s/></get_statusResponse>`), []byte("\n<!-- served by debbugs -->\n")...)
	reply, err := DecodeReply("get_status", data)
	require.NoError(t, err)
	assert.Len(t, reply.Values, 1)
}

func TestDecodeReplyLatin1Charset(t *testing.T) {
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<Envelope><Body><get_statusResponse><s><subject>caf\xe9</subject></s></get_statusResponse></Body></Envelope>")
	reply, err := DecodeReply("get_status", data)
	require.NoError(t, err)
	assert.Equal(t, "café", reply.Result().Child("subject").Text)
	assert.False(t, strings.ContainsRune(reply.Result().Child("subject").Text, '�'))
}
