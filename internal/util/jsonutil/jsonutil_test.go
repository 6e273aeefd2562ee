package jsonutil

import (
	"testing"

	"depdoctor/internal/tester"
)

type pkg struct {
	PackageName string `json:"package_name"`
}

func TestUnmarshalFlexDirect(t *testing.T) {
	var p pkg
	tester.NoErr(t, UnmarshalFlex([]byte(`{"package_name":"log4j"}`), &p))
	tester.Eq(t, p.PackageName, "log4j")
}

func TestUnmarshalFlexCodeFence(t *testing.T) {
	var p pkg
	raw := "```json\n{\"package_name\":\"jackson\"}\n```"
	tester.NoErr(t, UnmarshalFlex([]byte(raw), &p))
	tester.Eq(t, p.PackageName, "jackson")
}

func TestUnmarshalFlexQuotedDocument(t *testing.T) {
	var p pkg
	tester.NoErr(t, UnmarshalFlex([]byte(`"{\"package_name\":\"slf4j\"}"`), &p))
	tester.Eq(t, p.PackageName, "slf4j")
}

func TestUnmarshalFlexGarbage(t *testing.T) {
	var p pkg
	tester.True(t, UnmarshalFlex([]byte(`the package is log4j`), &p) != nil, "expected error")
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	b, err := MarshalNoEscapeIndent(map[string]string{"snippet": "<b>List<String></b> & more"}, "", "  ")
	tester.NoErr(t, err)
	tester.Eq(t, string(b), "{\n  \"snippet\": \"<b>List<String></b> & more\"\n}")
}

func TestStripCodeFence(t *testing.T) {
	tester.Eq(t, string(StripCodeFence([]byte("  {\"a\":1}  "))), `{"a":1}`)
	tester.Eq(t, string(StripCodeFence([]byte("```\n{\"a\":1}\n```"))), `{"a":1}`)
}
