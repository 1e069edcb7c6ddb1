package models

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given boolean.
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue dereferences b, falling back to def when b is nil.
func BoolValue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
