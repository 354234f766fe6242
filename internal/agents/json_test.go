package agents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no hint", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
		{"brace in string", `Result: {"summary":"uses } and { freely"} done`, `{"summary":"uses } and { freely"}`},
		{"whitespace", "   \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeJSONText(tt.in))
		})
	}
}

func TestExtractJSONObjectUnbalanced(t *testing.T) {
	require.Empty(t, extractJSONObject(`{"a": {"b": 1}`))
	require.Empty(t, extractJSONObject(`no braces`))
}
