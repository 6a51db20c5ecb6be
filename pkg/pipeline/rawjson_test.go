package pipeline

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestReindentJSON(t *testing.T) {
	raw := []byte(`{"version":"V2","images":[{"name":"demo","fields":[{"inferText":"\uac00\ub098 <b>","inferConfidence":1.50,"lineBreak":true,"tags":[],"extra":{},"note":null}]}]}`)

	got, err := reindentJSON(raw, "    ")
	if err != nil {
		t.Fatalf("reindentJSON() error: %v", err)
	}

	want := `{
    "version": "V2",
    "images": [
        {
            "name": "demo",
            "fields": [
                {
                    "inferText": "LABEL",
                    "inferConfidence": 1.50,
                    "lineBreak": true,
                    "tags": [],
                    "extra": {},
                    "note": null
                }
            ]
        }
    ]
}`
	want = strings.Replace(want, "LABEL", "\uac00\ub098 <b>", 1)
	if string(got) != want {
		t.Errorf("reindentJSON() =\n%s\nwant\n%s", got, want)
	}
	if !json.Valid(got) {
		t.Errorf("output is not valid JSON")
	}
}

func TestReindentJSON_Scalars(t *testing.T) {
	got, err := reindentJSON([]byte(` "a\"b" `), "  ")
	if err != nil {
		t.Fatalf("reindentJSON() error: %v", err)
	}
	if string(got) != `"a\"b"` {
		t.Errorf("reindentJSON() = %s", got)
	}
}

func TestReindentJSON_Malformed(t *testing.T) {
	for _, raw := range []string{"", "{", `{"a":1`, `{"a" 1}`, `{} {}`, `[1,]`, `{"a":tru}`} {
		if _, err := reindentJSON([]byte(raw), "    "); err == nil {
			t.Errorf("reindentJSON(%q) expected error", raw)
		}
	}
}
