// Package jsonutil holds the JSON helpers shared by the LLM client and the
// report writers.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalNoEscapeIndent encodes v with indentation and without HTML escaping,
// so changelog snippets keep their angle brackets. No trailing newline.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StripCodeFence trims whitespace and removes a surrounding ``` fence,
// including an optional language tag on the opening line.
func StripCodeFence(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = s[3:]
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = bytes.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = bytes.TrimSpace(s)
	s = bytes.TrimSuffix(s, []byte("```"))
	return bytes.TrimSpace(s)
}

// UnmarshalFlex decodes model output into v. Besides plain JSON it accepts a
// fenced block and a document that was itself encoded as a JSON string.
func UnmarshalFlex(raw []byte, v any) error {
	firstErr := json.Unmarshal(raw, v)
	if firstErr == nil {
		return nil
	}
	body := StripCodeFence(raw)
	for range 2 {
		if len(body) == 0 || body[0] != '"' {
			break
		}
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			break
		}
		body = StripCodeFence([]byte(inner))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode model output: %w", firstErr)
	}
	return nil
}
