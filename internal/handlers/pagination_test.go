package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		name              string
		page, limit       int
		wantPage, wantLim int
	}{
		{"defaults pass through", 1, 20, 1, 20},
		{"zero page clamps to 1", 0, 20, 1, 20},
		{"negative page clamps to 1", -3, 20, 1, 20},
		{"limit over cap clamps to 100", 1, 1000, 1, 100},
		{"zero limit falls back to default", 1, 0, 1, 20},
		{"negative limit falls back to default", 2, -5, 2, 20},
		{"limit at cap is kept", 3, 100, 3, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := clampPage(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLim, limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(1, 20))
	assert.Equal(t, 20, offset(2, 20))
	assert.Equal(t, 450, offset(10, 50))
}
