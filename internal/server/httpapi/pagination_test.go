package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 20, 1},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 20, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, numPages(tt.count, tt.size), "count=%d size=%d", tt.count, tt.size)
	}
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 20},
		{"5", 5},
		{"0", 20},
		{"-3", 20},
		{"x", 20},
		{"1000", MaxPageSize},
	}
	for _, tt := range tests {
		q := url.Values{}
		if tt.raw != "" {
			q.Set(pageSizeParam, tt.raw)
		}
		assert.Equal(t, tt.want, parsePageSize(q, 20), "raw=%q", tt.raw)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw      string
		page     int
		last, ok bool
	}{
		{"", 1, false, true},
		{"3", 3, false, true},
		{"last", 1, true, true},
		{"0", 0, false, false},
		{"LAST", 0, false, false},
		{"x", 0, false, false},
	}
	for _, tt := range tests {
		q := url.Values{}
		if tt.raw != "" {
			q.Set(pageParam, tt.raw)
		}
		page, last, ok := parsePage(q)
		assert.Equal(t, tt.page, page, "raw=%q", tt.raw)
		assert.Equal(t, tt.last, last, "raw=%q", tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
	}
}
