package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListLimit(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		ok    bool
	}{
		{"", defaultListLimit, true},
		{"1", 1, true},
		{"50", 50, true},
		{"200", 200, true},
		// 超出上限截断，不拒绝
		{"201", maxListLimit, true},
		{"1000000", maxListLimit, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		limit, ok := parseListLimit(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.limit, limit, tc.in)
		}
	}
}
