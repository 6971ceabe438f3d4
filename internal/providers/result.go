package providers

import "github.com/tidwall/gjson"

// FallbackText is the reply used when the completion service answers with a shape
// none of the known patterns match.
const FallbackText = "Sorry, I received an unexpected response format."

// Result is a normalized completion response. The concrete type records which
// response shape the service produced; Text yields the reply either way.
type Result interface {
	Text() string
	isResult()
}

// StringResult is a plain-text body, or a JSON string literal.
type StringResult struct{ Value string }

// ChoiceResult is an OpenAI-style body carrying choices[0].message.content.
type ChoiceResult struct{ Content string }

// MessageFieldResult is an object body carrying a top-level "message" field.
type MessageFieldResult struct{ Message string }

// UnrecognizedResult is any other body. Raw keeps the original bytes for logging.
type UnrecognizedResult struct{ Raw string }

func (r StringResult) Text() string       { return r.Value }
func (r ChoiceResult) Text() string       { return r.Content }
func (r MessageFieldResult) Text() string { return r.Message }
func (r UnrecognizedResult) Text() string { return FallbackText }

func (StringResult) isResult()       {}
func (ChoiceResult) isResult()       {}
func (MessageFieldResult) isResult() {}
func (UnrecognizedResult) isResult() {}

// ParseResult classifies a response body. Bodies that are not valid JSON are
// treated as plain text, matching services that answer with text/plain.
func ParseResult(body []byte) Result {
	if !gjson.ValidBytes(body) {
		return StringResult{Value: string(body)}
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.Type == gjson.String:
		return StringResult{Value: root.String()}
	case !root.IsObject():
		return UnrecognizedResult{Raw: root.Raw}
	}

	if content := root.Get("choices.0.message.content"); content.Exists() && content.Type != gjson.Null {
		return ChoiceResult{Content: content.String()}
	}

	if msg := root.Get("message"); truthy(msg) {
		return MessageFieldResult{Message: msg.String()}
	}

	return UnrecognizedResult{Raw: root.Raw}
}

// truthy reports whether a JSON value counts as present: "", 0, false and null do not.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
