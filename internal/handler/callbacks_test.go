package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "test_data",
			expected: "test_data",
		},
		{
			name:     "string with whitespace",
			input:    "  test_data  ",
			expected: "test_data",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "string with tab",
			input:    "test\tdata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCallbackRoute(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		expectedUnique string
		expectedArgs   []string
	}{
		{
			name:           "button marker and payload",
			raw:            "\fgrade|3|学",
			expectedUnique: "grade",
			expectedArgs:   []string{"3", "学"},
		},
		{
			name:           "plain unique",
			raw:            "study",
			expectedUnique: "study",
			expectedArgs:   []string{},
		},
		{
			name:           "surrounding whitespace",
			raw:            "  fav|龙\n",
			expectedUnique: "fav",
			expectedArgs:   []string{"龙"},
		},
		{
			name: "empty",
			raw:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, args := callbackRoute(tt.raw)
			assert.Equal(t, tt.expectedUnique, unique)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}
