package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short input is kept", input: "ok", limit: 10, want: "ok"},
		{name: "ascii cut", input: "abcdef", limit: 3, want: "abc"},
		{name: "cut inside a two byte rune backs off", input: "xãã", limit: 4, want: "xã"},
		{name: "cut on a rune boundary", input: "xãã", limit: 3, want: "xã"},
		{name: "cut inside a three byte rune", input: "a€b", limit: 3, want: "a"},
		{name: "invalid bytes are replaced", input: "a\xc3", limit: 10, want: "a�"},
		{name: "zero limit", input: "abc", limit: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.TruncateUTF8(tt.input, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), max(tt.limit, 0))
		})
	}
}

func TestTruncateUTF8_LongPortugueseText(t *testing.T) {
	msg := "x" + strings.Repeat("ã", 200)

	got := domain.TruncateUTF8(msg, 255)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 255)
	assert.True(t, strings.HasSuffix(got, "ã"))
}
