package utils

import (
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage приводит номер страницы и ее размер к допустимым значениям.
// Страницы нумеруются с 1.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset returns the SQL OFFSET for a normalized page.
func Offset(page, size int) int {
	page, size = NormalizePage(page, size)
	return (page - 1) * size
}

// ParsePageParams parses raw "page" and "page_size" query values.
// Unparseable values fall back to defaults.
func ParsePageParams(rawPage, rawSize string) (int, int) {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		page = 1
	}
	size, err := strconv.Atoi(rawSize)
	if err != nil {
		size = DefaultPageSize
	}
	return NormalizePage(page, size)
}
