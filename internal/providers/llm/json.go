package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseFailure reports generated text that does not satisfy the JSON contract.
type ParseFailure struct {
	Raw string
	Err error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("generated text is not valid JSON: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// DecodeJSON decodes a generated JSON document into v.
// A single surrounding markdown code fence is removed; anything else around
// the document, including prose or a second value, is a *ParseFailure.
func DecodeJSON(text string, v any) error {
	body := StripFence(text)
	if body == "" {
		return &ParseFailure{Raw: text, Err: ErrEmptyResponse}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return &ParseFailure{Raw: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &ParseFailure{Raw: text, Err: errors.New("unexpected data after JSON value")}
	}
	return nil
}

// StripFence trims whitespace and removes a surrounding ``` or ```json fence.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ""
	}
	end := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
