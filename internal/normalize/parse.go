// internal/normalize/parse.go
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"greenguide/internal/common/validation"
)

// ParseFailure explains why a model answer could not be read as structured data.
type ParseFailure struct {
	Stage  string
	Reason string
	Raw    string
	// Decoded holds the object when JSON decoding succeeded but the shape check failed.
	Decoded map[string]interface{}
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%s: unparseable model output: %s", f.Stage, f.Reason)
}

// Shape is the expected structure of a stage's JSON answer.
type Shape struct {
	Stage  string
	Schema *validation.Schema
}

const fence = "```"

// StripCodeFences returns the body of the first Markdown code fence in s,
// dropping any prose before or after it. The opening fence may carry a
// language tag (```json). Text without a fence is returned trimmed, so
// calling it twice changes nothing further.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, fence)
	if open < 0 {
		return s
	}

	body := s[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if !strings.ContainsAny(tag, "{[\"") {
			body = body[nl+1:]
		}
	} else {
		// Single-line fence: ```json {...}```
		body = strings.TrimPrefix(body, "json")
	}

	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ParseStructured strips fences, decodes a single JSON object and checks it
// against shape. Unfenced prose around the object is tolerated: the span from
// the first '{' to the last '}' is tried before giving up.
func ParseStructured(raw string, shape Shape) (map[string]interface{}, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, &ParseFailure{Stage: shape.Stage, Reason: "empty response", Raw: raw}
	}

	obj, err := decodeObject(text)
	if err != nil {
		span, ok := objectSpan(text)
		if !ok {
			return nil, &ParseFailure{Stage: shape.Stage, Reason: err.Error(), Raw: raw}
		}
		if obj, err = decodeObject(span); err != nil {
			return nil, &ParseFailure{Stage: shape.Stage, Reason: err.Error(), Raw: raw}
		}
	}

	if shape.Schema != nil {
		result, err := shape.Schema.Validate(obj)
		if err != nil {
			return nil, &ParseFailure{Stage: shape.Stage, Reason: err.Error(), Raw: raw, Decoded: obj}
		}
		if !result.Valid {
			return nil, &ParseFailure{Stage: shape.Stage, Reason: result.Error(), Raw: raw, Decoded: obj}
		}
	}

	return obj, nil
}

// objectSpan cuts text down to its outermost braces. Top-level arrays are not
// unwrapped.
func objectSpan(text string) (string, bool) {
	if strings.HasPrefix(text, "[") {
		return "", false
	}
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return "", false
	}
	span := text[first : last+1]
	if span == text {
		return "", false
	}
	return span, true
}

func decodeObject(text string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if obj == nil {
		return nil, errors.New("decode json: not an object")
	}

	// Reject trailing content such as a second object or prose after the JSON.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: unexpected trailing content")
	}
	return obj, nil
}

func isFailure(err error) (*ParseFailure, bool) {
	var pf *ParseFailure
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}
