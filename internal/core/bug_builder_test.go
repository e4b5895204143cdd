package core

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debianbts/internal/soap"
	"debianbts/internal/types"
)

func decodeStatus(t *testing.T, structBody string) *soap.Value {
	t.Helper()
	reply, err := soap.DecodeReply(OpGetStatus, []byte(soapReply(OpGetStatus, statusMap(structBody))))
	require.NoError(t, err)
	value := reply.Result().Index(0).Child("value")
	require.NotNil(t, value)
	return value
}

func TestBuildBugReportExample(t *testing.T) {
	node := decodeStatus(t, statusStruct("787723",
		`<severity xsi:type="xsd:string">important</severity>`+
			`<tags xsi:type="soapenc:Array"><item>fixed-upstream</item><item>patch</item><item>jessie</item></tags>`+
			`<done xsi:type="xsd:string">true</done>`))

	report, err := BuildBugReport(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, 787723, report.BugNum)
	assert.Equal(t, types.SeverityImportant, report.Severity)
	assert.Equal(t, []string{"fixed-upstream", "patch", "jessie"}, report.Tags)
	assert.True(t, report.Done)
	assert.Empty(t, report.DoneBy)
}

func TestBuildBugReportFullRecord(t *testing.T) {
	closer := base64.StdEncoding.EncodeToString([]byte("Jörg Müller <jm@example.org>"))
	node := decodeStatus(t, statusStruct("42",
		`<package xsi:type="xsd:string">src:foo,foo-bin</package>`+
			`<source xsi:type="xsd:string">foo</source>`+
			`<severity xsi:type="xsd:string">Serious</severity>`+
			`<tags xsi:type="xsd:string">patch moreinfo</tags>`+
			`<done xsi:type="xsd:string">` + closer + `</done>`+
			`<forwarded xsi:type="xsd:string">https://upstream.example/1</forwarded>`+
			`<owner xsi:type="xsd:string"></owner>`+
			`<originator xsi:type="xsd:string">Reporter &lt;r@example.org&gt;</originator>`+
			`<subject xsi:type="xsd:base64Binary">Zm9vOiBjcmFzaGVz</subject>`+
			`<summary xsi:type="xsd:string"></summary>`+
			`<msgid xsi:type="xsd:string">&lt;1@example.org&gt;</msgid>`+
			`<location xsi:type="xsd:string">db-h</location>`+
			`<archived xsi:type="xsd:int">0</archived>`+
			`<unarchived xsi:type="xsd:string"></unarchived>`+
			`<pending xsi:type="xsd:string">done</pending>`+
			`<mergedwith xsi:type="xsd:string">43 44</mergedwith>`+
			`<blocks xsi:type="soapenc:Array"><item xsi:type="xsd:int">7</item></blocks>`+
			`<blockedby xsi:type="soapenc:Array"></blockedby>`+
			`<found_versions xsi:type="soapenc:Array"><item>foo/1.0-1</item><item>1.1-1</item></found_versions>`+
			`<fixed_versions xsi:type="soapenc:Array"><item>foo/1.2-1</item></fixed_versions>`+
			`<affects xsi:type="xsd:string">bar, baz</affects>`+
			`<keywords xsi:type="xsd:string">ignored</keywords>`))

	got, err := BuildBugReport(context.Background(), node)
	require.NoError(t, err)

	want := types.BugReport{
		BugNum:        42,
		Package:       "src:foo,foo-bin",
		Source:        "foo",
		Severity:      types.SeveritySerious,
		Tags:          []string{"patch", "moreinfo"},
		Done:          true,
		DoneBy:        "Jörg Müller <jm@example.org>",
		Forwarded:     "https://upstream.example/1",
		Originator:    "Reporter <r@example.org>",
		Subject:       "foo: crashes",
		MsgID:         "<1@example.org>",
		Date:          time.Unix(1432372126, 0).UTC(),
		LogModified:   time.Unix(1432400000, 0).UTC(),
		Location:      "db-h",
		Pending:       "done",
		MergedWith:    []int{43, 44},
		Blocks:        []int{7},
		BlockedBy:     []int{},
		FoundVersions: []string{"foo/1.0-1", "1.1-1"},
		FixedVersions: []string{"foo/1.2-1"},
		Affects:       []string{"bar", "baz"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"src:foo", "foo-bin"}, got.Packages())
}

func TestBuildBugReportDefaultsMissingLists(t *testing.T) {
	report, err := BuildBugReport(context.Background(), decodeStatus(t, statusStruct("5", "")))
	require.NoError(t, err)
	assert.Equal(t, types.NewBugReport(5).Tags, report.Tags)
	assert.NotNil(t, report.MergedWith)
	assert.NotNil(t, report.Blocks)
	assert.NotNil(t, report.BlockedBy)
	assert.NotNil(t, report.FoundVersions)
	assert.NotNil(t, report.FixedVersions)
	assert.NotNil(t, report.Affects)
	assert.False(t, report.Done)
	assert.Empty(t, report.DoneBy)
}

func TestBuildBugReportIsIdempotent(t *testing.T) {
	data := []byte(soapReply(OpGetStatus, statusMap(statusStruct("9",
		`<tags xsi:type="soapenc:Array"><item>a</item><item>b</item></tags>`+
			`<done_by xsi:type="xsd:string">None</done_by>`))))
	build := func() types.BugReport {
		reply, err := soap.DecodeReply(OpGetStatus, data)
		require.NoError(t, err)
		report, err := BuildBugReport(context.Background(), reply.Result().Index(0).Child("value"))
		require.NoError(t, err)
		return report
	}
	first := build()
	second := build()
	assert.True(t, first.Equal(second))
	assert.Empty(t, first.DoneBy)
}

func TestBuildBugReportFieldLocalRecovery(t *testing.T) {
	node := decodeStatus(t, statusStruct("11",
		`<subject xsi:type="xsd:base64Binary">***</subject>`+
			`<blocks xsi:type="soapenc:Array"><item>12</item><item>oops</item><item>34</item></blocks>`+
			`<archived xsi:type="xsd:string">maybe</archived>`+
			`<originator xsi:type="xsd:string">still here</originator>`))

	report, fieldErrs, err := buildBugReport(node)
	require.NoError(t, err)
	assert.Len(t, fieldErrs, 3)
	assert.Empty(t, report.Subject)
	assert.Equal(t, []int{12, 34}, report.Blocks)
	assert.False(t, report.Archived)
	assert.Equal(t, "still here", report.Originator)
	for _, fieldErr := range fieldErrs {
		assert.True(t, types.IsKind(fieldErr, types.ErrorKindDecode), "got %v", fieldErr)
	}
}

func TestBuildBugReportDoneBy(t *testing.T) {
	tests := []struct {
		name       string
		extra      string
		wantDone   bool
		wantDoneBy string
	}{
		{name: "absent", extra: "", wantDone: false, wantDoneBy: ""},
		{name: "none sentinel", extra: `<done_by>None</done_by>`, wantDoneBy: ""},
		{name: "plain ascii", extra: `<done>1</done><done_by>Jane &lt;j@example.org&gt;</done_by>`,
			wantDone: true, wantDoneBy: "Jane <j@example.org>"},
		{name: "base64 non ascii", extra: `<done>1</done><done_by>` +
			base64.StdEncoding.EncodeToString([]byte("Zoë <z@example.org>")) + `</done_by>`,
			wantDone: true, wantDoneBy: "Zoë <z@example.org>"},
		{name: "address in done", extra: `<done>Jane &lt;j@example.org&gt;</done>`,
			wantDone: true, wantDoneBy: "Jane <j@example.org>"},
		{name: "done_by wins over done address", extra: `<done>old@example.org</done><done_by>new@example.org</done_by>`,
			wantDone: true, wantDoneBy: "new@example.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := BuildBugReport(context.Background(), decodeStatus(t, statusStruct("3", tt.extra)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, report.Done)
			assert.Equal(t, tt.wantDoneBy, report.DoneBy)
		})
	}
}

func TestBuildBugReportFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing bug_num", body: `<date>1</date><log_modified>1</log_modified>`},
		{name: "non numeric bug_num", body: statusStruct("abc", "")},
		{name: "zero bug_num", body: statusStruct("0", "")},
		{name: "missing date", body: `<bug_num>1</bug_num><log_modified>1</log_modified>`},
		{name: "bad log_modified", body: `<bug_num>1</bug_num><date>1</date><log_modified>soon</log_modified>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildBugReport(context.Background(), decodeStatus(t, tt.body))
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.ErrorKindMalformedReply), "got %v", err)
		})
	}
	_, err := BuildBugReport(context.Background(), nil)
	assert.True(t, types.IsKind(err, types.ErrorKindMalformedReply))
}

func TestFieldTableCoversStatusFields(t *testing.T) {
	require.NoError(t, checkFieldTable(fieldTable))
	assert.Len(t, fieldTable, len(statusFields)-1)
}

func TestCheckFieldTableRejectsBrokenTables(t *testing.T) {
	broken := append([]fieldSpec(nil), fieldTable...)
	broken = append(broken, stringField("package", func(*types.BugReport, string) {}))
	assert.Error(t, checkFieldTable(broken))

	assert.Error(t, checkFieldTable(fieldTable[1:]))

	extra := append([]fieldSpec(nil), fieldTable...)
	extra = append(extra, stringField("keywords", func(*types.BugReport, string) {}))
	assert.Error(t, checkFieldTable(extra))

	noSetter := append([]fieldSpec(nil), fieldTable...)
	noSetter[0] = fieldSpec{name: noSetter[0].name, kind: fieldString}
	assert.Error(t, checkFieldTable(noSetter))

	assert.Panics(t, func() { mustFieldTable(fieldTable[1:]) })
}
