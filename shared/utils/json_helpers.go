package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const codeFence = "```"

// fenceOpenRegex матчит открывающий маркер блока кода с необязательным языком (```json, ```JSON, ```).
var fenceOpenRegex = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")

// StripCodeFence removes a markdown code fence that wraps model output.
// A leading ``` marker (optionally tagged with a language) and a trailing ``` are removed
// when present and the remainder is trimmed. Input without a fence is only trimmed.
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, codeFence) {
		out = fenceOpenRegex.ReplaceAllString(out, "")
	}
	if strings.HasSuffix(out, codeFence) {
		out = strings.TrimSuffix(out, codeFence)
	}
	return strings.TrimSpace(out)
}

// DecodeJSONValue декодирует ровно одно JSON-значение из s в out.
// Лишние данные после значения считаются ошибкой.
func DecodeJSONValue(s string, out interface{}) error {
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid json: unexpected data after top-level value")
	}
	return nil
}
