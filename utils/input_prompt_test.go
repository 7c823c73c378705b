package utils

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			accepted, err := ConfirmPrompt("Reset?", bufio.NewReader(strings.NewReader(tt.input)), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, accepted)
			assert.Contains(t, out.String(), "Reset? (y/N)")
		})
	}
}
