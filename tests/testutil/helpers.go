// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

var (
	operationPattern = regexp.MustCompile(`<ns1:([A-Za-z_]+)`)
	itemPattern      = regexp.MustCompile(`<item[^>]*>(\d+)</item>`)
)

// FakeBTS is an in-process Debbugs SOAP endpoint. get_status echoes a
// minimal record for every requested id; other operations answer from
// Replies, keyed by operation name, with the inner result XML.
type FakeBTS struct {
	Server  *httptest.Server
	Replies map[string]string

	mu         sync.Mutex
	operations []string
}

func NewFakeBTS(t *testing.T, replies map[string]string) *FakeBTS {
	t.Helper()
	fake := &FakeBTS{Replies: replies}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.Server.Close)
	return fake
}

// Operations lists the operations received so far, in arrival order.
func (f *FakeBTS) Operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.operations...)
}

func (f *FakeBTS) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	match := operationPattern.FindSubmatch(body)
	if match == nil {
		http.Error(w, "no operation", http.StatusBadRequest)
		return
	}
	operation := string(match[1])
	f.mu.Lock()
	f.operations = append(f.operations, operation)
	f.mu.Unlock()

	result, ok := f.Replies[operation]
	if operation == "get_status" && !ok {
		var ids []string
		for _, item := range itemPattern.FindAllSubmatch(body, -1) {
			ids = append(ids, string(item[1]))
		}
		result, ok = StatusMap(ids...), true
	}
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, FaultEnvelope("soap:Client", "unknown operation "+operation))
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = io.WriteString(w, Envelope(operation, result))
}

// Envelope wraps result in a <operation>Response body the way the
// Debbugs server does.
func Envelope(operation string, result string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xmlns:xsd="http://www.w3.org/2001/XMLSchema"` +
		` xmlns:apachens="http://xml.apache.org/xml-soap">` +
		`<soap:Body><` + operation + `Response xmlns="Debbugs/SOAP/V1">` + result +
		`</` + operation + `Response></soap:Body></soap:Envelope>`
}

func FaultEnvelope(code string, message string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		`<soap:Fault><faultcode>` + code + `</faultcode><faultstring>` + message + `</faultstring></soap:Fault>` +
		`</soap:Body></soap:Envelope>`
}

func IntArray(ids ...int) string {
	var sb strings.Builder
	sb.WriteString(`<soapenc:Array xsi:type="soapenc:Array">`)
	for _, id := range ids {
		fmt.Fprintf(&sb, `<item xsi:type="xsd:int">%d</item>`, id)
	}
	sb.WriteString(`</soapenc:Array>`)
	return sb.String()
}

// StatusMap renders a get_status map with one open normal-severity
// record per id.
func StatusMap(ids ...string) string {
	var sb strings.Builder
	sb.WriteString(`<s-gensym3 xsi:type="apachens:Map">`)
	for _, id := range ids {
		sb.WriteString(`<item><key xsi:type="xsd:int">` + id + `</key><value>` +
			`<bug_num xsi:type="xsd:int">` + id + `</bug_num>` +
			`<package xsi:type="xsd:string">pkg` + id + `</package>` +
			`<severity xsi:type="xsd:string">normal</severity>` +
			`<subject xsi:type="xsd:string">bug ` + id + `</subject>` +
			`<date xsi:type="xsd:int">1432372126</date>` +
			`<log_modified xsi:type="xsd:int">1432400000</log_modified>` +
			`</value></item>`)
	}
	sb.WriteString(`</s-gensym3>`)
	return sb.String()
}
