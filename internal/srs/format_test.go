package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "<1m"},
		{30 * time.Second, "<1m"},
		{6 * time.Minute, "<6m"},
		{10 * time.Minute, "<10m"},
		{90 * time.Minute, "2h"},
		{4 * 24 * time.Hour, "4d"},
		{45 * 24 * time.Hour, "1.5mo"},
		{730 * 24 * time.Hour, "2.0y"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatInterval(tt.input))
		})
	}
}
