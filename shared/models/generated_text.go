package models

import "fmt"

// GeneratedText is the result of an LLM call that degrades instead of failing.
// When Degraded is set, Text holds a human-readable error message built from Cause.
type GeneratedText struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
	Cause    error  `json:"-"`
}

// Generated wraps successful model output.
func Generated(text string) GeneratedText {
	return GeneratedText{Text: text}
}

// DegradedText builds the in-band error text "<prefix>: <cause>".
func DegradedText(prefix string, cause error) GeneratedText {
	return GeneratedText{
		Text:     fmt.Sprintf("%s: %v", prefix, cause),
		Degraded: true,
		Cause:    cause,
	}
}

func (g GeneratedText) String() string {
	return g.Text
}
