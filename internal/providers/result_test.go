package providers

import "testing"

func TestParseResult(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantKind string
	}{
		{"plain text", "hello", "hello", "string"},
		{"json string literal", `"hello"`, "hello", "string"},
		{"choices", `{"choices":[{"message":{"content":"hi"}}]}`, "hi", "choice"},
		{"choices with extra fields", `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"hi there"}}],"usage":{}}`, "hi there", "choice"},
		{"message field", `{"message":"hey"}`, "hey", "message"},
		{"empty object", `{}`, FallbackText, "unrecognized"},
		{"empty message field", `{"message":""}`, FallbackText, "unrecognized"},
		{"null message field", `{"message":null}`, FallbackText, "unrecognized"},
		{"choices without content falls through to message", `{"choices":[{"message":{}}],"message":"m"}`, "m", "message"},
		{"empty choices", `{"choices":[]}`, FallbackText, "unrecognized"},
		{"array", `[1,2,3]`, FallbackText, "unrecognized"},
		{"number", `42`, FallbackText, "unrecognized"},
		{"null", `null`, FallbackText, "unrecognized"},
		{"multi-line text", "line one\nline two", "line one\nline two", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseResult([]byte(tt.body))
			if got := r.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}

			var kind string
			switch r.(type) {
			case StringResult:
				kind = "string"
			case ChoiceResult:
				kind = "choice"
			case MessageFieldResult:
				kind = "message"
			case UnrecognizedResult:
				kind = "unrecognized"
			}
			if kind != tt.wantKind {
				t.Errorf("ParseResult(%q) kind = %s, want %s", tt.body, kind, tt.wantKind)
			}
		})
	}
}
